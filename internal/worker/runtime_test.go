package worker

import (
	"testing"
	"time"

	"github.com/iamprecieee/distributed-notification-system/internal/models"
)

func TestRenderAllRendersEveryContentField(t *testing.T) {
	tpl := &models.Template{
		Content: map[string]string{
			"subject": "Welcome {{name}}",
			"text":    "Hi {{name}}, enjoy!",
		},
	}
	out := renderAll(tpl, map[string]interface{}{"name": "Ada"})
	if out["subject"] != "Welcome Ada" {
		t.Errorf("subject = %q", out["subject"])
	}
	if out["text"] != "Hi Ada, enjoy!" {
		t.Errorf("text = %q", out["text"])
	}
}

func TestBackoffForGrowsExponentially(t *testing.T) {
	for attempt := 0; attempt < 5; attempt++ {
		d := backoffFor(attempt)
		lower := baseBackoff * time.Duration(1<<attempt)
		if lower > maxBackoff {
			lower = maxBackoff
		}
		upper := lower + baseBackoff
		if d < lower || d > upper {
			t.Errorf("backoffFor(%d) = %v, want within [%v, %v]", attempt, d, lower, upper)
		}
	}
}

func TestBackoffForCapsAtMaxBackoff(t *testing.T) {
	d := backoffFor(10)
	if d < maxBackoff || d > maxBackoff+baseBackoff {
		t.Errorf("backoffFor(10) = %v, want capped near %v", d, maxBackoff)
	}
}

func TestRoutingKeySelectsByChannel(t *testing.T) {
	emailRuntime := &Runtime{channel: "email"}
	if got := emailRuntime.routingKey(); got != "email" {
		t.Errorf("email runtime routingKey = %q", got)
	}
	pushRuntime := &Runtime{channel: "push"}
	if got := pushRuntime.routingKey(); got != "push" {
		t.Errorf("push runtime routingKey = %q", got)
	}
}
