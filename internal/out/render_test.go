package out

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/walletbeam/walletbeam/internal/config"
	"github.com/walletbeam/walletbeam/internal/model"
)

func TestRenderJSONSelectResultsOnly(t *testing.T) {
	env := model.Envelope{
		Version: "v1",
		Success: true,
		Data:    []map[string]any{{"status": "sent", "tx_id": "0xabc"}},
		Meta:    model.EnvelopeMeta{Timestamp: time.Now()},
	}
	settings := config.Settings{OutputMode: "json", SelectFields: []string{"status"}, ResultsOnly: true}
	var buf bytes.Buffer
	if err := Render(&buf, env, settings); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	var out []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("json decode failed: %v", err)
	}
	if len(out) != 1 || out[0]["status"] != "sent" {
		t.Fatalf("unexpected output: %s", buf.String())
	}
	if _, ok := out[0]["tx_id"]; ok {
		t.Fatalf("field projection failed: %s", buf.String())
	}
}

func TestRenderEnvelopeJSON(t *testing.T) {
	env := model.Envelope{
		Version: "v1",
		Success: true,
		Data:    model.SendResult{Status: "sent", ChainID: "eip155:1", Amount: "1"},
		Meta:    model.EnvelopeMeta{Timestamp: time.Now(), Command: "send"},
	}
	var buf bytes.Buffer
	if err := Render(&buf, env, config.Settings{OutputMode: "json"}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("json decode failed: %v", err)
	}
	if decoded["version"] != "v1" || decoded["success"] != true {
		t.Fatalf("envelope fields missing: %s", buf.String())
	}
}

func TestRenderPlain(t *testing.T) {
	env := model.Envelope{
		Version: "v1",
		Success: true,
		Data:    []map[string]any{{"topic": "t1", "alive": true}},
		Meta:    model.EnvelopeMeta{Timestamp: time.Now()},
	}
	settings := config.Settings{OutputMode: "plain", ResultsOnly: true}
	var buf bytes.Buffer
	if err := Render(&buf, env, settings); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(buf.String(), "topic=t1") {
		t.Fatalf("unexpected plain output: %s", buf.String())
	}
}
