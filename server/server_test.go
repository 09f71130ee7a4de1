package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/guaranteeops/reconbot/metrics"
)

const testOpsPort = 18317

func awaitPing(t *testing.T, port int) {
	url := fmt.Sprintf("http://localhost:%d/ping", port)
	for i := 0; i < 100; i++ {
		resp, err := http.Get(url)
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("ops server did not come up on port %d", port)
}

func TestOpsServerServesPingAndMetrics(t *testing.T) {
	done, shutdown, reg := StartOpsServer(OpsServerOpts{
		Port:          testOpsPort,
		RequestLogLvl: slog.LevelDebug,
	})
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			t.Errorf("Could not shut down ops server: %s", err)
		}
		done.Wait()
	}()
	awaitPing(t, testOpsPort)

	m := metrics.New(reg)
	m.EventsReceived.WithLabelValues("message").Inc()
	m.ObserveExchange(nil)

	resp, err := http.Get(fmt.Sprintf("http://localhost:%d/metrics", testOpsPort))
	if err != nil {
		t.Errorf("Did not expect error. Got %s", err)
		t.FailNow()
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Errorf("Did not expect error. Got %s", err)
		t.FailNow()
	}
	exposition := string(body)
	if !strings.Contains(exposition, `reconbot_events_received_total{type="message"} 1`) {
		t.Errorf("Event counter missing from exposition:\n%s", exposition)
	}
	if !strings.Contains(exposition, `reconbot_credential_exchanges_total{outcome="success"} 1`) {
		t.Errorf("Exchange counter missing from exposition:\n%s", exposition)
	}
}

func TestOpsServerDisabledStillHandsOutRegistry(t *testing.T) {
	done, shutdown, reg := StartOpsServer(OpsServerOpts{Port: 0})
	if reg == nil {
		t.Error("Registry should be usable even with the server disabled")
	}
	metrics.New(reg).ModalSubmissions.Inc()
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("Did not expect error. Got %s", err)
	}
	done.Wait()
}
