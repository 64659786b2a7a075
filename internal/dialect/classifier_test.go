package dialect

import (
	"context"
	"testing"

	"github.com/tariqmb/rudud/internal/queue"
)

const (
	egyptianText = "ازيك انت عايز ايه النهارده يا معلم"
	neutralText  = "السلام عليكم ورحمة الله"
)

func newTestClassifier() (*Classifier, *queue.Memory) {
	mem := queue.NewMemory()
	return NewClassifier(queue.NewBestEffort(mem, nil), nil), mem
}

func TestConfidenceAlwaysInBounds(t *testing.T) {
	c, _ := newTestClassifier()
	inputs := []struct {
		text    string
		country string
	}{
		{"", ""},
		{"hello there, how are you?", ""},
		{"hello", "EG"},
		{egyptianText, ""},
		{egyptianText, "EG"},
		{egyptianText, "SA"},
		{neutralText, ""},
		{neutralText, "MA"},
		{"شو هالحكي كتير منيح هيك بدي اعرف", "LB"},
		{"واش راك لاباس بزاف مزيان دابا كيفاش", "DZ"},
	}
	for _, in := range inputs {
		res := c.Detect(context.Background(), in.text, DetectOptions{Country: in.country})
		if res.Confidence < 0 || res.Confidence > 1 {
			t.Errorf("Detect(%q, %q): confidence %f out of [0,1]", in.text, in.country, res.Confidence)
		}
	}
}

func TestNonArabicTextIsEnglish(t *testing.T) {
	c, _ := newTestClassifier()
	for _, text := range []string{"hello", "what's your refund policy?", "12345 !!", ""} {
		res := c.Detect(context.Background(), text, DetectOptions{})
		want := Result{Dialect: DialectEnglish, Confidence: 0.9, Method: MethodKeyword}
		if res != want {
			t.Errorf("Detect(%q) = %+v, want %+v", text, res, want)
		}
	}
}

func TestEgyptianKeywordsDetected(t *testing.T) {
	c, _ := newTestClassifier()
	res := c.Detect(context.Background(), egyptianText, DetectOptions{})
	if res.Dialect != DialectEgyptian {
		t.Errorf("expected dialect eg, got %s", res.Dialect)
	}
	if res.Confidence <= 0.75 {
		t.Errorf("expected confidence > 0.75, got %f", res.Confidence)
	}
	if res.Method != MethodKeyword {
		t.Errorf("expected method keyword, got %s", res.Method)
	}
}

func TestNoMatchesFallsBackToMSA(t *testing.T) {
	c, _ := newTestClassifier()
	res := c.Detect(context.Background(), neutralText, DetectOptions{})
	want := Result{Dialect: DialectMSA, Confidence: 0.5, Method: MethodKeyword}
	if res != want {
		t.Errorf("Detect(%q) = %+v, want %+v", neutralText, res, want)
	}
}

func TestGeoOverridesWeakKeywordEvidence(t *testing.T) {
	c, _ := newTestClassifier()
	res := c.Detect(context.Background(), neutralText, DetectOptions{Country: "MA"})
	if res.Dialect != DialectMaghrebi {
		t.Errorf("expected maghreb from geo override, got %s", res.Dialect)
	}
	if res.Method != MethodHybrid {
		t.Errorf("expected method hybrid, got %s", res.Method)
	}
	if res.Confidence != 0.7 {
		t.Errorf("expected confidence 0.7 (0.5 + 0.2), got %f", res.Confidence)
	}
}

func TestGeoBoostsAgreeingStrongEvidence(t *testing.T) {
	c, _ := newTestClassifier()
	base := c.Detect(context.Background(), egyptianText, DetectOptions{})
	boosted := c.Detect(context.Background(), egyptianText, DetectOptions{Country: "EG"})

	if boosted.Dialect != DialectEgyptian {
		t.Errorf("expected dialect eg, got %s", boosted.Dialect)
	}
	if boosted.Method != MethodHybrid {
		t.Errorf("expected method hybrid, got %s", boosted.Method)
	}
	if boosted.Confidence <= base.Confidence {
		t.Errorf("expected boost above %f, got %f", base.Confidence, boosted.Confidence)
	}
	if boosted.Confidence > 0.95 {
		t.Errorf("boost must cap at 0.95, got %f", boosted.Confidence)
	}
}

func TestGeoDisagreementLeavesStrongEvidenceAlone(t *testing.T) {
	c, _ := newTestClassifier()
	base := c.Detect(context.Background(), egyptianText, DetectOptions{})
	other := c.Detect(context.Background(), egyptianText, DetectOptions{Country: "SA"})
	if other != base {
		t.Errorf("strong disagreeing evidence should be unchanged: got %+v, want %+v", other, base)
	}
}

func TestGeoMonotonicity(t *testing.T) {
	c, _ := newTestClassifier()
	texts := []string{egyptianText, neutralText, "hello world", "عايز مساعدة", ""}
	for _, text := range texts {
		plain := c.Detect(context.Background(), text, DetectOptions{})
		withGeo := c.Detect(context.Background(), text, DetectOptions{Country: "EG"})
		if withGeo.Confidence < plain.Confidence {
			t.Errorf("Detect(%q): geo confidence %f < plain %f", text, withGeo.Confidence, plain.Confidence)
		}
	}
}

func TestDetectIsDeterministic(t *testing.T) {
	c, _ := newTestClassifier()
	opts := DetectOptions{Country: "KW"}
	first := c.Detect(context.Background(), egyptianText, opts)
	for i := 0; i < 10; i++ {
		again := c.Detect(context.Background(), egyptianText, opts)
		if again != first {
			t.Fatalf("run %d: got %+v, want %+v", i, again, first)
		}
	}
}

func TestUnknownCountryIsIgnored(t *testing.T) {
	c, _ := newTestClassifier()
	plain := c.Detect(context.Background(), neutralText, DetectOptions{})
	unknown := c.Detect(context.Background(), neutralText, DetectOptions{Country: "ZZ"})
	if unknown != plain {
		t.Errorf("unknown country should be ignored: got %+v, want %+v", unknown, plain)
	}
}

func TestAnalyticsEmittedPerCall(t *testing.T) {
	c, mem := newTestClassifier()
	c.Detect(context.Background(), egyptianText, DetectOptions{ConversationID: "conv-1"})
	c.Detect(context.Background(), "hello", DetectOptions{})

	jobs := mem.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 analytics events, got %d", len(jobs))
	}
	if jobs[0].Type != "dialect_detected" {
		t.Errorf("unexpected job type %q", jobs[0].Type)
	}
	payload, ok := jobs[0].Payload.(map[string]any)
	if !ok {
		t.Fatalf("unexpected payload type %T", jobs[0].Payload)
	}
	if payload["conversation_id"] != "conv-1" {
		t.Errorf("expected conversation_id conv-1, got %v", payload["conversation_id"])
	}
	if payload["dialect"] != "eg" {
		t.Errorf("expected dialect eg in analytics, got %v", payload["dialect"])
	}
}
