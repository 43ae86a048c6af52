package llm

import "strings"

// Stub returns a canned plan so the app flow works end to end without an
// OpenAI key. Output depends only on the input, for reproducible tests.
type Stub struct{}

func NewStub() *Stub {
	return &Stub{}
}

func (s *Stub) GeneratePlan(input PlanInput) (string, error) {
	room := input.RoomType
	if room == "" {
		room = "room"
	}
	style := input.DesignStyle
	if style == "" {
		style = "refreshed"
	}

	lines := []string{
		"DIY plan: " + style + " " + room,
		"1. Clear and prep the space; patch and sand walls.",
		"2. Paint in the chosen palette; two coats, 4h between.",
		"3. Swap hardware and fixtures to match the style.",
		"4. Stage furniture and lighting per the preview image.",
	}
	if input.Brief != "" {
		lines = append(lines, "Notes: "+input.Brief)
	}
	return strings.Join(lines, "\n"), nil
}
