package importer

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

const snapshot = `{"id": "1706.03762", "title": "Attention Is All\n  You Need", "abstract": "  The dominant sequence transduction models\n are based on RNNs.", "authors": "Ashish Vaswani, Noam Shazeer", "categories": "cs.CL cs.LG", "update_date": "2023-08-02", "versions": [{"version": "v1", "created": "Mon, 12 Jun 2017 17:57:34 GMT"}], "citation_count": 99}
{"id": "1512.03385", "title": "Deep Residual Learning for Image Recognition", "abstract": "Deeper neural networks are more difficult to train.", "authors": "Kaiming He, Xiangyu Zhang", "categories": "cs.CV", "update_date": "2015-12-10", "versions": [], "citation_count": "9"}

{"id": "0704.0001", "title": "Calculation of prompt diphoton production", "abstract": "A fully differential calculation.", "authors": "C. Balazs", "categories": "hep-ph", "update_date": "2008-11-13", "versions": [{"version": "v1", "created": "Mon, 2 Apr 2007 19:18:42 GMT"}]}
`

func TestParseArXivSnapshot(t *testing.T) {
	refs, errs, err := ParseArXivSnapshot(strings.NewReader(snapshot), ArXivOptions{})
	if err != nil {
		t.Fatalf("ParseArXivSnapshot() error = %v", err)
	}
	if len(errs) > 0 {
		t.Fatalf("unexpected record errors: %v", errs)
	}
	if len(refs) != 3 {
		t.Fatalf("got %d refs, want 3", len(refs))
	}

	att := refs[0]
	if att.ID != "1706.03762" || att.Title != "Attention Is All You Need" {
		t.Errorf("refs[0] = %+v", att)
	}
	if att.Abstract != "The dominant sequence transduction models are based on RNNs." {
		t.Errorf("abstract = %q", att.Abstract)
	}
	if att.Year != 2017 || att.MainCategory != "cs.CL" {
		t.Errorf("year = %d, category = %q", att.Year, att.MainCategory)
	}
	if att.Link != "https://arxiv.org/abs/1706.03762" {
		t.Errorf("link = %q", att.Link)
	}

	if refs[1].Year != 2015 {
		t.Errorf("year from update_date = %d, want 2015", refs[1].Year)
	}
	if refs[2].Year != 2007 {
		t.Errorf("year from single-digit day = %d, want 2007", refs[2].Year)
	}

	if att.NormalizedPopularity != 1 || refs[2].NormalizedPopularity != 0 {
		t.Errorf("popularity = %v, %v, want 1 and 0", att.NormalizedPopularity, refs[2].NormalizedPopularity)
	}
	if p := refs[1].NormalizedPopularity; p <= 0 || p >= 1 {
		t.Errorf("mid popularity = %v, want strictly between 0 and 1", p)
	}
	for _, r := range refs {
		if err := r.Validate(); err != nil {
			t.Errorf("%s fails validation: %v", r.ID, err)
		}
	}
}

func TestParseArXivSnapshot_Filters(t *testing.T) {
	refs, _, err := ParseArXivSnapshot(strings.NewReader(snapshot), ArXivOptions{CategoryPrefix: "cs."})
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 2 {
		t.Errorf("cs. filter kept %d papers, want 2", len(refs))
	}

	refs, _, err = ParseArXivSnapshot(strings.NewReader(snapshot), ArXivOptions{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 1 || refs[0].ID != "1706.03762" {
		t.Errorf("limit 1 kept %+v", refs)
	}
	if refs[0].NormalizedPopularity != 0 {
		t.Errorf("single paper popularity = %v, want 0", refs[0].NormalizedPopularity)
	}
}

func TestParseArXivSnapshot_PartialErrors(t *testing.T) {
	input := `{"id": "1", "title": "Good"}
not json
{"id": "", "title": "No id"}
{"id": "3", "title": "   "}
{"id": "4", "title": "Bad count", "citation_count": -2}
{"id": 5.5, "title": "Numeric id"}
`
	refs, errs, err := ParseArXivSnapshot(strings.NewReader(input), ArXivOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 2 {
		t.Errorf("got %d refs, want 2", len(refs))
	}
	if len(errs) != 4 {
		t.Errorf("got %d errors, want 4: %v", len(errs), errs)
	}
	if len(errs) > 0 && !strings.HasPrefix(errs[0].Error(), "line 2:") {
		t.Errorf("first error = %v, want line 2", errs[0])
	}
	if len(refs) == 2 && refs[1].ID != "5.5" {
		t.Errorf("numeric id = %q, want 5.5", refs[1].ID)
	}
}

func TestFlexibleString(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"2017"`, "2017"},
		{`2017`, "2017"},
		{`12.5`, "12.5"},
		{`null`, ""},
	}
	for _, tt := range tests {
		var f FlexibleString
		if err := json.Unmarshal([]byte(tt.input), &f); err != nil {
			t.Errorf("Unmarshal(%s) error = %v", tt.input, err)
			continue
		}
		if f.String() != tt.want {
			t.Errorf("Unmarshal(%s) = %q, want %q", tt.input, f, tt.want)
		}
	}

	var f FlexibleString
	if err := json.Unmarshal([]byte(`{"a": 1}`), &f); err == nil {
		t.Error("object should not unmarshal into FlexibleString")
	}
}

func TestNormalizePopularity(t *testing.T) {
	got := NormalizePopularity([]float64{0, math.E - 1, math.E*math.E - 1})
	want := []float64{0, 0.5, 1}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("NormalizePopularity()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	for _, v := range NormalizePopularity([]float64{7, 7}) {
		if v != 0 {
			t.Errorf("equal counts should normalize to 0, got %v", v)
		}
	}
	if len(NormalizePopularity(nil)) != 0 {
		t.Error("empty input should give empty output")
	}
}

func TestPrimaryCategory(t *testing.T) {
	if got := primaryCategory("  cs.CL cs.LG "); got != "cs.CL" {
		t.Errorf("primaryCategory() = %q", got)
	}
	if got := primaryCategory(""); got != "" {
		t.Errorf("primaryCategory(empty) = %q", got)
	}
}
