package pinyin

import (
	"testing"

	"github.com/chrischowai/Putonghua-learning/pkg/vocab"
)

func chars(entries []vocab.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Character)
	}
	return out
}

func TestExtractNoIdeographs(t *testing.T) {
	if got := Extract("hello, world 123 ！"); len(got) != 0 {
		t.Fatalf("expected no suggestions, got %v", chars(got))
	}
	if got := Extract(""); len(got) != 0 {
		t.Fatalf("expected no suggestions for empty text, got %v", chars(got))
	}
}

func TestExtractDiscardsLongRuns(t *testing.T) {
	if got := Extract("你好媽媽"); len(got) != 0 {
		t.Fatalf("4-character run must be discarded, got %v", chars(got))
	}
}

func TestExtractTwoCharacterRun(t *testing.T) {
	got := Extract("你好")
	if len(got) != 1 || got[0].Character != "你好" {
		t.Fatalf("expected [你好], got %v", chars(got))
	}
	s := got[0]
	if s.Pinyin != "" || s.Tone != vocab.NeutralTone || s.Origin != vocab.OriginUser || s.ID != "" {
		t.Fatalf("unexpected stub: %+v", s)
	}
}

func TestExtractDedupesInFirstSeenOrder(t *testing.T) {
	got := chars(Extract("貓，狗。貓 a 老師 狗 天 老師"))
	want := []string{"貓", "狗", "老師", "天"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestExtractIgnoresOutOfRangeIdeographs(t *testing.T) {
	// U+9FA6 is a CJK ideograph outside the scanned range and splits runs.
	got := chars(Extract("大\u9fa6小"))
	if len(got) != 2 || got[0] != "大" || got[1] != "小" {
		t.Fatalf("expected [大 小], got %v", got)
	}
}
