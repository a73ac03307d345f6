package app

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"luxstay/internal/domain"
)

// Planner turns free text into a validated, ordered step sequence. The
// LLM consultation is optional; regex extraction plus a deterministic
// default plan guarantee the planner never fails the caller.
type Planner struct {
	gen              domain.TextGenerator
	includeResponder bool
	log              zerolog.Logger
}

func NewPlanner(gen domain.TextGenerator, includeResponder bool, log zerolog.Logger) *Planner {
	if gen == nil {
		gen = domain.NopGenerator{}
	}
	return &Planner{gen: gen, includeResponder: includeResponder, log: log}
}

var allowedSteps = map[domain.PlanStep]struct{}{
	domain.StepHotelSearch:      {},
	domain.StepBudgetFilter:     {},
	domain.StepResponderNarrate: {},
}

var (
	reDateDMY  = regexp.MustCompile(`(\d{1,2})\s*[–-]\s*(\d{1,2})\s+([A-Za-z]{3,})\s+(\d{4})`)
	reDateISO  = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})\s*(?:to|–|-|—)\s*(\d{4}-\d{2}-\d{2})`)
	reCityPar  = regexp.MustCompile(`\(([A-Z]{3})\)`)
	reCityBare = regexp.MustCompile(`\b([A-Z]{3})\b`)
	reAdults   = regexp.MustCompile(`(?i)(\d+)\s+adults?`)
	rePrice    = regexp.MustCompile(`(?i)under\s*£?\s*(\d+)`)
	rePool     = regexp.MustCompile(`(?i)indoor\s+pool`)
)

// QueryBits is what regex extraction recovers from free text.
type QueryBits struct {
	CheckIn         string
	CheckOut        string
	CityCode        string
	Adults          int
	MaxPrice        *float64
	WantsIndoorPool bool
}

// ParseQuery extracts trip constraints from free text. Missing parts
// stay zero-valued; adults defaults to 2.
func ParseQuery(q string) QueryBits {
	bits := QueryBits{Adults: 2}
	bits.CheckIn, bits.CheckOut = parseDates(q)
	if m := reCityPar.FindStringSubmatch(q); m != nil {
		bits.CityCode = m[1]
	} else if m := reCityBare.FindStringSubmatch(q); m != nil {
		bits.CityCode = m[1]
	}
	if m := reAdults.FindStringSubmatch(q); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			bits.Adults = n
		}
	}
	if m := rePrice.FindStringSubmatch(q); m != nil {
		if f, err := strconv.ParseFloat(m[1], 64); err == nil {
			bits.MaxPrice = &f
		}
	}
	bits.WantsIndoorPool = rePool.MatchString(q)
	return bits
}

func parseDates(q string) (string, string) {
	if m := reDateDMY.FindStringSubmatch(q); m != nil {
		ci, err1 := time.Parse("2 Jan 2006", fmt.Sprintf("%s %s %s", m[1], m[3], m[4]))
		co, err2 := time.Parse("2 Jan 2006", fmt.Sprintf("%s %s %s", m[2], m[3], m[4]))
		if err1 == nil && err2 == nil {
			return ci.Format("2006-01-02"), co.Format("2006-01-02")
		}
	}
	if m := reDateISO.FindStringSubmatch(q); m != nil {
		return m[1], m[2]
	}
	return "", ""
}

// Summary renders the extracted bits as a short human-readable line.
func (b QueryBits) Summary() string {
	var parts []string
	if b.CityCode != "" {
		parts = append(parts, b.CityCode)
	}
	if b.CheckIn != "" && b.CheckOut != "" {
		parts = append(parts, b.CheckIn+"→"+b.CheckOut)
	}
	if b.MaxPrice != nil {
		parts = append(parts, fmt.Sprintf("£%d/night", int(*b.MaxPrice)))
	}
	if b.WantsIndoorPool {
		parts = append(parts, "indoor pool")
	}
	if b.Adults > 0 {
		parts = append(parts, fmt.Sprintf("%d adults", b.Adults))
	}
	if len(parts) == 0 {
		return "auto plan"
	}
	return strings.Join(parts, ", ")
}

const planPromptTmpl = `You are a planner.
Return ONLY valid, minified JSON matching this schema:
{"agents":["hotel_search","budget_filter"%s],"notes":"one short line"}
Rules:
- No markdown or prose, JSON only.
- "hotel_search" must come before "budget_filter".
- If unsure, return %s.

Request: %s
JSON:
`

// Plan builds the step sequence for a query. LLM failures of any kind
// (unavailable, timeout, malformed JSON) fall back to the deterministic
// default plan with regex-derived notes.
func (p *Planner) Plan(ctx context.Context, query string) domain.Plan {
	q := strings.TrimSpace(query)
	bits := ParseQuery(q)
	notes := bits.Summary()

	maybeResp := ""
	if p.includeResponder {
		maybeResp = `,"responder_narrate"`
	}
	defaultJSON, _ := json.Marshal(map[string]any{"agents": p.defaultAgents(), "notes": "default plan"})
	prompt := fmt.Sprintf(planPromptTmpl, maybeResp, string(defaultJSON), q)

	raw, err := p.gen.Generate(ctx, prompt, 256, 0)
	if err != nil {
		if err != domain.ErrNoGenerator {
			p.log.Warn().Err(err).Msg("planner llm call failed; using default plan")
		}
		return domain.Plan{Agents: p.defaultAgents(), Notes: notes, UsedLLM: false}
	}

	obj := extractFirstJSON(raw)
	if obj == nil {
		return domain.Plan{Agents: p.defaultAgents(), Notes: notes, UsedLLM: false}
	}

	plan := p.sanitize(*obj)
	if plan.Notes == "" || plan.Notes == "auto plan" || plan.Notes == "default plan" {
		plan.Notes = notes
	}
	plan.UsedLLM = true
	return plan
}

func (p *Planner) defaultAgents() []domain.PlanStep {
	agents := []domain.PlanStep{domain.StepHotelSearch, domain.StepBudgetFilter}
	if p.includeResponder {
		agents = append(agents, domain.StepResponderNarrate)
	}
	return agents
}

type rawPlan struct {
	Agents []string `json:"agents"`
	Notes  string   `json:"notes"`
}

// extractFirstJSON pulls the outermost {...} object out of model text,
// tolerating fences and surrounding prose.
func extractFirstJSON(text string) *rawPlan {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return nil
	}
	var rp rawPlan
	if err := json.Unmarshal([]byte(text[start:end+1]), &rp); err != nil {
		return nil
	}
	return &rp
}

// sanitize keeps only allowed steps, deduplicates preserving first
// occurrence, forces hotel_search and budget_filter to both be present
// with hotel_search first, and appends the responder step only when the
// feature flag enables it.
func (p *Planner) sanitize(rp rawPlan) domain.Plan {
	seen := map[domain.PlanStep]struct{}{}
	var agents []domain.PlanStep
	for _, a := range rp.Agents {
		step := domain.PlanStep(a)
		if _, ok := allowedSteps[step]; !ok {
			continue
		}
		if _, dup := seen[step]; dup {
			continue
		}
		seen[step] = struct{}{}
		agents = append(agents, step)
	}

	ordered := []domain.PlanStep{domain.StepHotelSearch, domain.StepBudgetFilter}
	for _, a := range agents {
		if a == domain.StepHotelSearch || a == domain.StepBudgetFilter {
			continue
		}
		if a == domain.StepResponderNarrate && !p.includeResponder {
			continue
		}
		ordered = append(ordered, a)
	}
	if p.includeResponder && !contains(ordered, domain.StepResponderNarrate) {
		ordered = append(ordered, domain.StepResponderNarrate)
	}

	return domain.Plan{Agents: ordered, Notes: strings.TrimSpace(rp.Notes)}
}

func contains(steps []domain.PlanStep, s domain.PlanStep) bool {
	for _, v := range steps {
		if v == s {
			return true
		}
	}
	return false
}
