package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rcliao/specforge/internal/domain"
)

var (
	useCaseTitleRe  = regexp.MustCompile(`(?i)^use\s*case:\s*(.+)$`)
	useCaseNameRe   = regexp.MustCompile(`(?i)use\s?case`)
	useCaseFieldRe  = regexp.MustCompile(`(?i)^(description|actors|preconditions|postconditions|main\s+flow|alternative\s+flows?):\s*(.*)$`)
	numberedStepRe  = regexp.MustCompile(`^(?:[-*+]|\d+[.)])\s+`)
	descriptionKey  = regexp.MustCompile(`(?i)description:`)
	actorsOrPreconK = regexp.MustCompile(`(?i)(?:actors|preconditions):`)
)

func UseCaseID(n int) string { return fmt.Sprintf("UC-%03d", n) }

// isUseCaseSection accepts a titled use case, a title mentioning use cases,
// or a body carrying the description plus actors/preconditions fields.
func isUseCaseSection(s domain.Section) bool {
	title := strings.TrimSpace(s.Title)
	if useCaseTitleRe.MatchString(title) || useCaseNameRe.MatchString(title) {
		return true
	}
	return descriptionKey.MatchString(s.Content) && actorsOrPreconK.MatchString(s.Content)
}

func UseCases(sections []domain.Section) []domain.UseCase {
	cases := make([]domain.UseCase, 0)
	for _, section := range sections {
		if !isUseCaseSection(section) {
			continue
		}
		for _, uc := range parseUseCases(section) {
			uc.ID = UseCaseID(len(cases) + 1)
			cases = append(cases, uc)
		}
	}
	return cases
}

type useCaseBuilder struct {
	current *domain.UseCase
	// titled is set when current was opened by a "Use Case: X" title.
	titled bool
	field  string
	out    []domain.UseCase
}

func newUseCase(name string) *domain.UseCase {
	return &domain.UseCase{
		Name:             name,
		Actors:           make([]string, 0),
		Preconditions:    make([]string, 0),
		Postconditions:   make([]string, 0),
		MainFlow:         make([]string, 0),
		AlternativeFlows: make([]string, 0),
	}
}

func (b *useCaseBuilder) flush() {
	if b.current != nil {
		b.out = append(b.out, *b.current)
	}
	b.current = nil
	b.titled = false
	b.field = ""
}

func parseUseCases(section domain.Section) []domain.UseCase {
	name := strings.TrimSpace(section.Title)
	m := useCaseTitleRe.FindStringSubmatch(name)
	if m != nil {
		name = strings.TrimSpace(m[1])
	}

	b := &useCaseBuilder{current: newUseCase(name), titled: m != nil}
	for _, raw := range strings.Split(section.Content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		bare := numberedStepRe.ReplaceAllString(line, "")

		if m := useCaseTitleRe.FindStringSubmatch(bare); m != nil {
			// The section-level use case only survives a header if something
			// was filled in.
			if b.current != nil && isEmptyUseCase(b.current) {
				b.current = nil
			}
			b.flush()
			b.current = newUseCase(strings.TrimSpace(m[1]))
			b.titled = true
			continue
		}
		if m := useCaseFieldRe.FindStringSubmatch(bare); m != nil {
			b.field = normalizeField(m[1])
			b.setField(strings.TrimSpace(m[2]))
			continue
		}
		if numberedStepRe.MatchString(line) {
			b.appendToField(bare)
		}
	}
	// A section merely named after use cases yields nothing without fields.
	if b.current != nil && !b.titled && isEmptyUseCase(b.current) {
		b.current = nil
	}
	b.flush()
	return b.out
}

func normalizeField(f string) string {
	f = strings.ToLower(strings.Join(strings.Fields(f), " "))
	if f == "alternative flow" {
		return "alternative flows"
	}
	return f
}

func (b *useCaseBuilder) setField(value string) {
	uc := b.current
	switch b.field {
	case "description":
		uc.Description = value
	case "actors":
		for _, a := range strings.Split(value, ",") {
			if a = strings.TrimSpace(a); a != "" {
				uc.Actors = append(uc.Actors, a)
			}
		}
	default:
		if value != "" {
			b.appendToField(value)
		}
	}
}

func (b *useCaseBuilder) appendToField(value string) {
	uc := b.current
	switch b.field {
	case "actors":
		uc.Actors = append(uc.Actors, value)
	case "preconditions":
		uc.Preconditions = append(uc.Preconditions, value)
	case "postconditions":
		uc.Postconditions = append(uc.Postconditions, value)
	case "main flow":
		uc.MainFlow = append(uc.MainFlow, value)
	case "alternative flows":
		uc.AlternativeFlows = append(uc.AlternativeFlows, value)
	}
}

func isEmptyUseCase(uc *domain.UseCase) bool {
	return uc.Description == "" && len(uc.Actors) == 0 && len(uc.Preconditions) == 0 &&
		len(uc.Postconditions) == 0 && len(uc.MainFlow) == 0 && len(uc.AlternativeFlows) == 0
}
