package cli

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"showlog/internal/models"
)

var testPromotions = map[string][]string{
	"WWE": {"RAW", "SMACKDOWN"},
	"AEW": {"DYNAMITE", "COLLISION"},
}

func newTestPrompter(input string) (*Prompter, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return NewPrompter(strings.NewReader(input), out), out
}

func TestMetadataKnownPromotionPickList(t *testing.T) {
	p, out := newTestPrompter("2024-05-01\nWWE\n\n1\n")

	meta, err := p.Metadata(testPromotions)
	if err != nil {
		t.Fatalf("Metadata() error: %v", err)
	}

	want := models.ShowMetadata{
		EventDate: "2024-05-01",
		Promotion: "WWE",
		ShowName:  "RAW",
		ShowType:  models.ShowTypeTV,
	}
	if meta != want {
		t.Errorf("Metadata() = %+v, want %+v", meta, want)
	}
	if !strings.Contains(out.String(), " 1) RAW") || !strings.Contains(out.String(), " 2) SMACKDOWN") {
		t.Errorf("Pick list not shown, output:\n%s", out.String())
	}
}

func TestMetadataPPVTakesFreeFormName(t *testing.T) {
	p, out := newTestPrompter("2024-02-03\nwwe\ny\nRoyal Rumble\n")

	meta, err := p.Metadata(testPromotions)
	if err != nil {
		t.Fatalf("Metadata() error: %v", err)
	}

	if meta.ShowType != models.ShowTypePPV {
		t.Errorf("ShowType = %q, want %q", meta.ShowType, models.ShowTypePPV)
	}
	if meta.ShowName != "Royal Rumble" {
		t.Errorf("ShowName = %q, want Royal Rumble", meta.ShowName)
	}
	if strings.Contains(out.String(), "1) RAW") {
		t.Error("PPV flow should not show the weekly pick list")
	}
}

func TestMetadataUnknownPromotionFreeForm(t *testing.T) {
	p, _ := newTestPrompter("2024-01-04\nNJPW\nn\nWrestle Kingdom 18\n")

	meta, err := p.Metadata(testPromotions)
	if err != nil {
		t.Fatalf("Metadata() error: %v", err)
	}
	if meta.ShowName != "Wrestle Kingdom 18" {
		t.Errorf("ShowName = %q, want Wrestle Kingdom 18", meta.ShowName)
	}
	if meta.ShowType != models.ShowTypeTV {
		t.Errorf("ShowType = %q, want %q", meta.ShowType, models.ShowTypeTV)
	}
}

func TestMetadataReprompsOnBadDate(t *testing.T) {
	p, out := newTestPrompter("May 1st\n2024-05-01\nAEW\nn\n2\n")

	meta, err := p.Metadata(testPromotions)
	if err != nil {
		t.Fatalf("Metadata() error: %v", err)
	}
	if meta.EventDate != "2024-05-01" {
		t.Errorf("EventDate = %q, want 2024-05-01", meta.EventDate)
	}
	if meta.ShowName != "COLLISION" {
		t.Errorf("ShowName = %q, want COLLISION", meta.ShowName)
	}
	if !strings.Contains(out.String(), "Invalid date format") {
		t.Error("Expected a date format complaint before the re-prompt")
	}
}

func TestMetadataFailsOnClosedInput(t *testing.T) {
	p, _ := newTestPrompter("")

	if _, err := p.Metadata(testPromotions); err == nil {
		t.Error("Expected error when input is exhausted")
	}
}

func TestPlayByPlayStopsAtSentinel(t *testing.T) {
	p, _ := newTestPrompter("First fall ends clean.\n\nSecond fall is a DQ.\n::end::\nleftover\n")

	got, err := p.PlayByPlay()
	if err != nil {
		t.Fatalf("PlayByPlay() error: %v", err)
	}
	want := "First fall ends clean.\n\nSecond fall is a DQ."
	if got != want {
		t.Errorf("PlayByPlay() = %q, want %q", got, want)
	}
}

func TestPersonalNotesRepromptsWhenEmpty(t *testing.T) {
	p, out := newTestPrompter("::end::\nGreat main event.\n::end::\n")

	got, err := p.PersonalNotes()
	if err != nil {
		t.Fatalf("PersonalNotes() error: %v", err)
	}
	if got != "Great main event." {
		t.Errorf("PersonalNotes() = %q, want Great main event.", got)
	}
	if !strings.Contains(out.String(), "Input cannot be empty") {
		t.Error("Expected an empty-input complaint before the re-prompt")
	}
}

func TestReadBlockErrorsWhenInputEndsEmpty(t *testing.T) {
	p, _ := newTestPrompter("::end::\n")

	if _, err := p.PersonalNotes(); err == nil {
		t.Error("Expected error when input ends without any text")
	}
}

func TestVideoIDs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "trims and drops empties",
			input: " abc , ,def\n",
			want:  []string{"abc", "def"},
		},
		{
			name:  "keeps duplicates",
			input: "abc,abc\n",
			want:  []string{"abc", "abc"},
		},
		{
			name:  "reprompts when only separators given",
			input: ",,,\nxyz\n",
			want:  []string{"xyz"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestPrompter(tt.input)
			got, err := p.VideoIDs()
			if err != nil {
				t.Fatalf("VideoIDs() error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("VideoIDs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		defaultValue bool
		want         bool
	}{
		{name: "empty picks default no", input: "\n", defaultValue: false, want: false},
		{name: "empty picks default yes", input: "\n", defaultValue: true, want: true},
		{name: "yes", input: "yes\n", defaultValue: false, want: true},
		{name: "uppercase N", input: "N\n", defaultValue: true, want: false},
		{name: "garbage then answer", input: "maybe\ny\n", defaultValue: false, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestPrompter(tt.input)
			got, err := p.Confirm("Continue? (y/N): ", tt.defaultValue)
			if err != nil {
				t.Fatalf("Confirm() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Confirm() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPromptSelectRejectsInvalidChoices(t *testing.T) {
	p, out := newTestPrompter("5\nfoo\n2\n")

	got, err := p.promptSelect("Select the show:", []string{"RAW", "SMACKDOWN"})
	if err != nil {
		t.Fatalf("promptSelect() error: %v", err)
	}
	if got != "SMACKDOWN" {
		t.Errorf("promptSelect() = %q, want SMACKDOWN", got)
	}
	if !strings.Contains(out.String(), "Invalid selection") {
		t.Error("Expected invalid selection complaints")
	}
}
