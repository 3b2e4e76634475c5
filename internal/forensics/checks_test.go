package forensics_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/lendguard/lendguard/internal/extraction"
	"github.com/lendguard/lendguard/internal/forensics"
)

// misalignedLayout builds a layout with the given number of misaligned rows.
// Rows are spaced 20pt apart; a misaligned row holds two words whose tops
// differ by 2pt.
func misalignedLayout(misaligned, aligned int) *extraction.TextLayout {
	var words []extraction.Word
	base := 0.0

	for i := 0; i < misaligned; i++ {
		words = append(words,
			extraction.Word{Text: "a", Left: 10, Top: base, Right: 30, Bottom: base + 10},
			extraction.Word{Text: "b", Left: 40, Top: base + 2, Right: 60, Bottom: base + 12},
		)
		base += 20
	}
	for i := 0; i < aligned; i++ {
		words = append(words,
			extraction.Word{Text: "c", Left: 10, Top: base, Right: 30, Bottom: base + 10},
			extraction.Word{Text: "d", Left: 40, Top: base, Right: 60, Bottom: base + 10},
		)
		base += 20
	}

	return &extraction.TextLayout{
		Pages: []extraction.PageText{
			{Number: 1, Width: 612, Height: 792, Words: words},
		},
	}
}

func TestCheckAlignmentNoText(t *testing.T) {
	tests := []struct {
		name   string
		layout *extraction.TextLayout
	}{
		{"nil layout", nil},
		{"empty pages", &extraction.TextLayout{}},
		{"pages without words", &extraction.TextLayout{
			Pages: []extraction.PageText{{Number: 1}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := forensics.CheckAlignmentResult(tt.layout)
			if got.Applicable {
				t.Error("Applicable = true, want false for document without text lines")
			}
			if got.RiskScore != 0 {
				t.Errorf("RiskScore = %v, want 0", got.RiskScore)
			}
		})
	}
}

func TestCheckAlignmentBins(t *testing.T) {
	tests := []struct {
		issues    int
		wantScore float64
	}{
		{0, 0},
		{1, 20},
		{5, 20},
		{6, 50},
		{10, 50},
		{11, 80},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d issues", tt.issues), func(t *testing.T) {
			got := forensics.CheckAlignmentResult(misalignedLayout(tt.issues, 4))
			if !got.Applicable {
				t.Fatal("Applicable = false, want true")
			}
			if got.RiskScore != tt.wantScore {
				t.Errorf("RiskScore = %v, want %v", got.RiskScore, tt.wantScore)
			}
			if tt.wantScore > 0 && len(got.Flags) == 0 {
				t.Error("expected a misalignment flag")
			}
		})
	}
}

func fontLayout(count int) *extraction.TextLayout {
	fonts := make([]extraction.FontUsage, 0, count)
	for i := 0; i < count; i++ {
		fonts = append(fonts, extraction.FontUsage{
			Name:     fmt.Sprintf("Font-%02d", i),
			Type:     "TrueType",
			Embedded: true,
		})
	}
	return &extraction.TextLayout{Fonts: fonts}
}

func TestCheckFontsBins(t *testing.T) {
	tests := []struct {
		count     int
		wantScore float64
	}{
		{1, 0},
		{6, 0},
		{7, 30},
		{10, 30},
		{11, 60},
		{15, 60},
		{16, 80},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d fonts", tt.count), func(t *testing.T) {
			got := forensics.CheckFontsResult(fontLayout(tt.count))
			if !got.Applicable {
				t.Fatal("Applicable = false, want true")
			}
			if got.RiskScore != tt.wantScore {
				t.Errorf("RiskScore = %v, want %v", got.RiskScore, tt.wantScore)
			}
		})
	}
}

func TestCheckFontsDeduplicates(t *testing.T) {
	layout := &extraction.TextLayout{
		Fonts: []extraction.FontUsage{
			{Name: "Helvetica"},
			{Name: "Helvetica"},
			{Name: "Times"},
		},
	}

	got := forensics.CheckFontsResult(layout)
	if got.RiskScore != 0 {
		t.Errorf("RiskScore = %v, want 0 for 2 distinct fonts", got.RiskScore)
	}
}

func TestCheckFontsNoInfo(t *testing.T) {
	got := forensics.CheckFontsResult(&extraction.TextLayout{})
	if got.Applicable {
		t.Error("Applicable = true, want false without font information")
	}
}

func TestCheckMetadata(t *testing.T) {
	tests := []struct {
		name      string
		info      *extraction.DocumentInfo
		wantScore float64
		wantFlag  string
	}{
		{
			name:      "nil info",
			info:      nil,
			wantScore: 30,
			wantFlag:  "no metadata found",
		},
		{
			name:      "absent metadata",
			info:      &extraction.DocumentInfo{Present: false},
			wantScore: 30,
			wantFlag:  "no metadata found",
		},
		{
			name: "clean professional producer",
			info: &extraction.DocumentInfo{
				Present:      true,
				Producer:     "Adobe PDF Library 15.0",
				CreationDate: "2024-03-01",
				ModDate:      "2024-03-01",
			},
			wantScore: 0,
		},
		{
			name: "substring denylist match",
			info: &extraction.DocumentInfo{
				Present:  true,
				Producer: "Adobe Word Online",
			},
			wantScore: 35,
			wantFlag:  "created with consumer tool: Word",
		},
		{
			name: "creator match",
			info: &extraction.DocumentInfo{
				Present: true,
				Creator: "canva.com",
			},
			wantScore: 35,
			wantFlag:  "created with consumer tool: Canva",
		},
		{
			name: "modified after creation",
			info: &extraction.DocumentInfo{
				Present:      true,
				Producer:     "Adobe PDF Library",
				CreationDate: "2024-03-01",
				ModDate:      "2024-04-01",
			},
			wantScore: 15,
			wantFlag:  "document modified after creation",
		},
		{
			name: "score bounded at 100",
			info: &extraction.DocumentInfo{
				Present:      true,
				Producer:     "Word Photoshop Canva",
				CreationDate: "2024-03-01",
				ModDate:      "2024-04-01",
			},
			wantScore: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := forensics.CheckMetadataResult(tt.info, nil)
			if !got.Applicable {
				t.Fatal("Applicable = false, want true")
			}
			if got.RiskScore != tt.wantScore {
				t.Errorf("RiskScore = %v, want %v", got.RiskScore, tt.wantScore)
			}
			if tt.wantFlag != "" && !hasFlag(got.Flags, tt.wantFlag) {
				t.Errorf("Flags = %v, want one containing %q", got.Flags, tt.wantFlag)
			}
		})
	}
}

func TestCheckMetadataCustomDenylist(t *testing.T) {
	info := &extraction.DocumentInfo{
		Present:  true,
		Producer: "Microsoft Word",
	}

	got := forensics.CheckMetadataResult(info, []string{"Scribus"})
	if got.RiskScore != 0 {
		t.Errorf("RiskScore = %v, want 0 when denylist excludes Word", got.RiskScore)
	}
}

func TestCheckNumbers(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantScore float64
	}{
		{
			name:      "single convention",
			text:      "Line 15000: 45,250.00 Line 23600: 44,100.00",
			wantScore: 0,
		},
		{
			name:      "two classes",
			text:      "total 1,000 balance 45.00",
			wantScore: 0,
		},
		{
			name:      "three classes",
			text:      "1,000 and 45.00 and 9.5",
			wantScore: 20,
		},
		{
			name:      "four classes",
			text:      "1,000 and 45.00 and 9.5 and 3.125",
			wantScore: 40,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := forensics.CheckNumbersResult(tt.text)
			if !got.Applicable {
				t.Fatal("Applicable = false, want true")
			}
			if got.RiskScore != tt.wantScore {
				t.Errorf("RiskScore = %v, want %v", got.RiskScore, tt.wantScore)
			}
		})
	}
}

func TestCheckNumbersNoTokens(t *testing.T) {
	got := forensics.CheckNumbersResult("no amounts appear in this text")
	if got.Applicable {
		t.Error("Applicable = true, want false without numeric tokens")
	}
}

func hasFlag(flags []string, substr string) bool {
	for _, f := range flags {
		if strings.Contains(f, substr) {
			return true
		}
	}
	return false
}
