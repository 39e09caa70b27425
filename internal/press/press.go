// Package press implements the pure press-release constructors and the
// layered-press planner of . Constructors are pure functions
// from a typed Context to a model.PressRelease — no closures — so plans
// built by Plan are serialisable and inspectable, per Design Notes 
// guidance to replace callback-style press layers with typed context
// plus a tag-selected constructor registry.
package press

import (
	"fmt"

	"github.com/foxglove-games/greatwork/internal/model"
)

// Context carries whatever a constructor needs to build one release.
// Free-form by design (mirrors the source's typed-context-per-event-
// class shape without requiring one Go type per event), but every
// constructor in this package only reads the keys it documents.
type Context map[string]any

func (c Context) str(key string) string {
	if v, ok := c[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func (c Context) strs(key string) []string {
	if v, ok := c[key]; ok {
		if s, ok := v.([]string); ok {
			return s
		}
	}
	return nil
}

func (c Context) i(key string) int {
	if v, ok := c[key]; ok {
		if n, ok := v.(int); ok {
			return n
		}
	}
	return 0
}

func metadataFrom(ctx Context, extra map[string]any) map[string]any {
	md := map[string]any{}
	for k, v := range extra {
		md[k] = v
	}
	if seed := ctx.str("tone_seed"); seed != "" {
		md["tone_seed"] = seed
	}
	if trace := ctx.str("trace_id"); trace != "" {
		md["trace_id"] = trace
	}
	return md
}

// AcademicBulletin constructs the press release for submit_theory.
// Context keys: bulletin_number, player, theory, confidence, deadline.
func AcademicBulletin(ctx Context) model.PressRelease {
	n := ctx.i("bulletin_number")
	return model.PressRelease{
		Type:     "academic_bulletin",
		Headline: fmt.Sprintf("Academic Bulletin No. %d", n),
		Body: fmt.Sprintf("%s submits a theory, staked %s: %q. Due for review by %s.",
			ctx.str("player"), ctx.str("confidence"), ctx.str("theory"), ctx.str("deadline")),
		Metadata: metadataFrom(ctx, map[string]any{
			"bulletin_number": n,
			"player":          ctx.str("player"),
			"confidence":      ctx.str("confidence"),
		}),
	}
}

// ResearchManifesto constructs the press release for queue_expedition.
// Context keys: code, player, expedition_type, objective, team, funding.
func ResearchManifesto(ctx Context) model.PressRelease {
	return model.PressRelease{
		Type:     "research_manifesto",
		Headline: fmt.Sprintf("Research Manifesto: Expedition %s", ctx.str("code")),
		Body: fmt.Sprintf("%s announces expedition %s (%s): %q, funded by %v.",
			ctx.str("player"), ctx.str("code"), ctx.str("expedition_type"), ctx.str("objective"), ctx.strs("funding")),
		Metadata: metadataFrom(ctx, map[string]any{
			"code":   ctx.str("code"),
			"player": ctx.str("player"),
		}),
	}
}

// DiscoveryReport constructs the press release for a non-failure
// expedition/conference resolution.
// Context keys: code, outcome, reputation_delta, sideways_discovery.
func DiscoveryReport(ctx Context) model.PressRelease {
	body := fmt.Sprintf("Expedition %s concludes: %s. Reputation shift %+d.",
		ctx.str("code"), ctx.str("outcome"), ctx.i("reputation_delta"))
	if sw := ctx.str("sideways_discovery"); sw != "" {
		body += " " + sw
	}
	return model.PressRelease{
		Type:     "discovery_report",
		Headline: fmt.Sprintf("Discovery Report: %s", ctx.str("code")),
		Body:     body,
		Metadata: metadataFrom(ctx, map[string]any{
			"code":             ctx.str("code"),
			"outcome":          ctx.str("outcome"),
			"reputation_delta": ctx.i("reputation_delta"),
		}),
	}
}

// RetractionNotice constructs the press release for a failed
// expedition/conference resolution.
func RetractionNotice(ctx Context) model.PressRelease {
	return model.PressRelease{
		Type:     "retraction_notice",
		Headline: fmt.Sprintf("Retraction Notice: %s", ctx.str("code")),
		Body: fmt.Sprintf("Expedition %s failed: %s. Reputation shift %+d.",
			ctx.str("code"), ctx.str("failure_detail"), ctx.i("reputation_delta")),
		Metadata: metadataFrom(ctx, map[string]any{
			"code":             ctx.str("code"),
			"reputation_delta": ctx.i("reputation_delta"),
		}),
	}
}

// RecruitmentReport constructs the press release for attempt_recruitment.
func RecruitmentReport(ctx Context) model.PressRelease {
	outcome := "fails"
	if ctx.i("success") == 1 {
		outcome = "succeeds"
	}
	return model.PressRelease{
		Type:     "recruitment_report",
		Headline: fmt.Sprintf("Recruitment %s: %s", titleCase(outcome), ctx.str("scholar")),
		Body: fmt.Sprintf("%s's bid to recruit %s into %s %s.",
			ctx.str("player"), ctx.str("scholar"), ctx.str("faction"), outcome),
		Metadata: metadataFrom(ctx, map[string]any{
			"player":  ctx.str("player"),
			"scholar": ctx.str("scholar"),
			"faction": ctx.str("faction"),
		}),
	}
}

// DefectionNotice constructs the press release for a resolved defection.
func DefectionNotice(ctx Context) model.PressRelease {
	return model.PressRelease{
		Type:     "defection_notice",
		Headline: fmt.Sprintf("Defection: %s", ctx.str("scholar")),
		Body: fmt.Sprintf("%s departs %s for %s.",
			ctx.str("scholar"), ctx.str("patron"), ctx.str("new_employer")),
		Metadata: metadataFrom(ctx, map[string]any{
			"scholar": ctx.str("scholar"),
			"patron":  ctx.str("patron"),
		}),
	}
}

// DefectionEpilogue constructs a layered follow-up press for a defection.
func DefectionEpilogue(ctx Context) model.PressRelease {
	return model.PressRelease{
		Type:     "defection_epilogue",
		Headline: fmt.Sprintf("Epilogue: %s", ctx.str("scholar")),
		Body:     ctx.str("body"),
		Metadata: metadataFrom(ctx, nil),
	}
}

// ConferenceScheduled constructs the press release for launch_conference.
func ConferenceScheduled(ctx Context) model.PressRelease {
	return model.PressRelease{
		Type:     "conference_scheduled",
		Headline: fmt.Sprintf("Conference Scheduled: %s", ctx.str("code")),
		Body: fmt.Sprintf("%s convenes conference %s to defend a theory, %d supporters against %d opposition.",
			ctx.str("player"), ctx.str("code"), ctx.i("supporters"), ctx.i("opposition")),
		Metadata: metadataFrom(ctx, map[string]any{"code": ctx.str("code")}),
	}
}

// ConferenceOutcome constructs the press release for a resolved conference.
func ConferenceOutcome(ctx Context) model.PressRelease {
	return model.PressRelease{
		Type:     "conference_outcome",
		Headline: fmt.Sprintf("Conference Outcome: %s", ctx.str("code")),
		Body: fmt.Sprintf("Conference %s concludes: %s. Reputation shift %+d.",
			ctx.str("code"), ctx.str("outcome"), ctx.i("reputation_delta")),
		Metadata: metadataFrom(ctx, map[string]any{
			"code":             ctx.str("code"),
			"reputation_delta": ctx.i("reputation_delta"),
		}),
	}
}

// SymposiumAnnouncement constructs the press release for start_symposium.
func SymposiumAnnouncement(ctx Context) model.PressRelease {
	return model.PressRelease{
		Type:     "symposium_announcement",
		Headline: fmt.Sprintf("Symposium Announced: %s", ctx.str("topic")),
		Body:     ctx.str("description"),
		Metadata: metadataFrom(ctx, map[string]any{"topic_id": ctx.i("topic_id")}),
	}
}

// SymposiumReminder constructs the vote-reminder press for a due reminder order.
// Context keys: tier ("first"|"escalation"), grace_remaining.
func SymposiumReminder(ctx Context) model.PressRelease {
	tier := ctx.str("tier")
	var body string
	if tier == "escalation" {
		body = fmt.Sprintf("Final call: vote now or forfeit your pledge. %d grace miss(es) remain.", ctx.i("grace_remaining"))
	} else {
		body = fmt.Sprintf("A reminder to cast your symposium vote. %d grace miss(es) remain.", ctx.i("grace_remaining"))
	}
	return model.PressRelease{
		Type:     "symposium_reminder",
		Headline: "Symposium Reminder",
		Body:     body,
		Metadata: metadataFrom(ctx, map[string]any{"tier": tier}),
	}
}

// SymposiumReprimand constructs the press release for a debt reprisal.
func SymposiumReprimand(ctx Context) model.PressRelease {
	return model.PressRelease{
		Type:     "symposium_reprimand",
		Headline: fmt.Sprintf("Reprimand: %s", ctx.str("player")),
		Body: fmt.Sprintf("%s is reprimanded for unpaid %s debt of %d influence.",
			ctx.str("player"), ctx.str("faction"), ctx.i("amount")),
		Metadata: metadataFrom(ctx, nil),
	}
}

// SymposiumResolution constructs the press release for resolve_symposium.
func SymposiumResolution(ctx Context) model.PressRelease {
	return model.PressRelease{
		Type:     "symposium_resolution",
		Headline: fmt.Sprintf("Symposium Resolved: %s", ctx.str("topic")),
		Body:     fmt.Sprintf("The symposium resolves in favor of option %d.", ctx.i("winner")),
		Metadata: metadataFrom(ctx, map[string]any{"winner": ctx.i("winner")}),
	}
}

// SymposiumProposal constructs the press release for submit_symposium_proposal.
func SymposiumProposal(ctx Context) model.PressRelease {
	return model.PressRelease{
		Type:     "symposium_proposal",
		Headline: fmt.Sprintf("Symposium Proposal: %s", ctx.str("topic")),
		Body:     ctx.str("description"),
		Metadata: metadataFrom(ctx, map[string]any{"player": ctx.str("player")}),
	}
}

// FactionInvestmentRelease constructs the press release for a faction investment.
func FactionInvestmentRelease(ctx Context) model.PressRelease {
	return model.PressRelease{
		Type:     "faction_investment",
		Headline: fmt.Sprintf("Faction Investment: %s", ctx.str("faction")),
		Body: fmt.Sprintf("%s invests %d influence in %s (%s).",
			ctx.str("player"), ctx.i("amount"), ctx.str("faction"), ctx.str("program")),
		Metadata: metadataFrom(ctx, nil),
	}
}

// ArchiveEndowmentRelease constructs the press release for an archive endowment.
func ArchiveEndowmentRelease(ctx Context) model.PressRelease {
	return model.PressRelease{
		Type:     "archive_endowment",
		Headline: fmt.Sprintf("Archive Endowment: %s", ctx.str("faction")),
		Body: fmt.Sprintf("%s endows the %s archive with %d influence.",
			ctx.str("player"), ctx.str("faction"), ctx.i("amount")),
		Metadata: metadataFrom(ctx, nil),
	}
}

// FactionProjectUpdate constructs the periodic project-progress press.
// Context keys: name, progress, target.
func FactionProjectUpdate(ctx Context) model.PressRelease {
	progress, _ := ctx["progress"].(float64)
	target, _ := ctx["target"].(float64)
	return model.PressRelease{
		Type:     "faction_project_update",
		Headline: fmt.Sprintf("Faction Project Update: %s", ctx.str("name")),
		Body:     fmt.Sprintf("%s progresses: %.1f / %.1f.", ctx.str("name"), progress, target),
		Metadata: metadataFrom(ctx, nil),
	}
}

// FactionProjectComplete constructs the project-completion press.
func FactionProjectComplete(ctx Context) model.PressRelease {
	return model.PressRelease{
		Type:     "faction_project_complete",
		Headline: fmt.Sprintf("Faction Project Complete: %s", ctx.str("name")),
		Body:     fmt.Sprintf("%s reaches completion; contributors are rewarded.", ctx.str("name")),
		Metadata: metadataFrom(ctx, nil),
	}
}

// SeasonalCommitmentUpdate constructs the periodic commitment-charge press.
func SeasonalCommitmentUpdate(ctx Context) model.PressRelease {
	return model.PressRelease{
		Type:     "seasonal_commitment_update",
		Headline: fmt.Sprintf("Seasonal Commitment: %s", ctx.str("faction")),
		Body: fmt.Sprintf("%s's seasonal commitment to %s is charged %d influence.",
			ctx.str("player"), ctx.str("faction"), ctx.i("cost")),
		Metadata: metadataFrom(ctx, nil),
	}
}

// SeasonalCommitmentComplete constructs the commitment-completion press.
func SeasonalCommitmentComplete(ctx Context) model.PressRelease {
	return model.PressRelease{
		Type:     "seasonal_commitment_complete",
		Headline: fmt.Sprintf("Seasonal Commitment Complete: %s", ctx.str("faction")),
		Body:     fmt.Sprintf("%s's commitment to %s concludes.", ctx.str("player"), ctx.str("faction")),
		Metadata: metadataFrom(ctx, nil),
	}
}

// TimelineUpdate constructs the press release for a digest timeline advance.
func TimelineUpdate(ctx Context) model.PressRelease {
	return model.PressRelease{
		Type:     "timeline_update",
		Headline: fmt.Sprintf("The Year Turns: %d", ctx.i("current_year")),
		Body:     fmt.Sprintf("%d year(s) have elapsed. The calendar now reads %d.", ctx.i("years_elapsed"), ctx.i("current_year")),
		Metadata: metadataFrom(ctx, map[string]any{"years_elapsed": ctx.i("years_elapsed")}),
	}
}

// AdminAction constructs an admin-provenance press release.
func AdminAction(ctx Context) model.PressRelease {
	return model.PressRelease{
		Type:     "admin_action",
		Headline: ctx.str("headline"),
		Body:     ctx.str("body"),
		Metadata: metadataFrom(ctx, map[string]any{"admin": ctx.str("admin")}),
	}
}

// TableTalk constructs a player's table-talk post press release.
func TableTalk(ctx Context) model.PressRelease {
	return model.PressRelease{
		Type:     "table_talk",
		Headline: fmt.Sprintf("Table Talk: %s", ctx.str("player")),
		Body:     ctx.str("text"),
		Metadata: metadataFrom(ctx, nil),
	}
}

// MentorshipUpdate constructs a press release for a mentorship transition.
func MentorshipUpdate(ctx Context) model.PressRelease {
	return model.PressRelease{
		Type:     "mentorship_update",
		Headline: fmt.Sprintf("Mentorship Update: %s", ctx.str("scholar")),
		Body:     ctx.str("body"),
		Metadata: metadataFrom(ctx, nil),
	}
}

// SidewaysVignette constructs the press release for the sideways_vignette follow-up.
func SidewaysVignette(ctx Context) model.PressRelease {
	return model.PressRelease{
		Type:     "sideways_vignette",
		Headline: "A Sideways Glimpse",
		Body:     ctx.str("body"),
		Metadata: metadataFrom(ctx, nil),
	}
}

// ScholarGrudge constructs a press release for a grudge-bearing follow-up.
func ScholarGrudge(ctx Context) model.PressRelease {
	return model.PressRelease{
		Type:     "scholar_grudge",
		Headline: fmt.Sprintf("A Grudge Forms: %s", ctx.str("scholar")),
		Body:     ctx.str("body"),
		Metadata: metadataFrom(ctx, nil),
	}
}

// ReputationShift constructs a generic reputation-change press release.
func ReputationShift(ctx Context) model.PressRelease {
	return model.PressRelease{
		Type:     "reputation_shift",
		Headline: fmt.Sprintf("Reputation Shift: %s", ctx.str("player")),
		Body:     fmt.Sprintf("%s's reputation shifts by %+d.", ctx.str("player"), ctx.i("delta")),
		Metadata: metadataFrom(ctx, nil),
	}
}

// OpportunityUnlocked constructs a press release for an unlocked opportunity.
func OpportunityUnlocked(ctx Context) model.PressRelease {
	return model.PressRelease{
		Type:     "opportunity_unlocked",
		Headline: "Opportunity Unlocked",
		Body:     ctx.str("body"),
		Metadata: metadataFrom(ctx, nil),
	}
}

// FactionShift constructs a press release for a faction-influence sideways effect.
func FactionShift(ctx Context) model.PressRelease {
	return model.PressRelease{
		Type:     "faction_shift",
		Headline: fmt.Sprintf("Faction Shift: %s", ctx.str("faction")),
		Body:     ctx.str("body"),
		Metadata: metadataFrom(ctx, nil),
	}
}

// DiscoveryTheory constructs a press release for a sideways-spawned theory.
func DiscoveryTheory(ctx Context) model.PressRelease {
	return model.PressRelease{
		Type:     "discovery_theory",
		Headline: "A New Theory Surfaces",
		Body:     ctx.str("body"),
		Metadata: metadataFrom(ctx, map[string]any{"deadline": ctx.str("deadline")}),
	}
}

// Sidecast constructs a press release for one sidecast phase
// (debut/integration/spotlight). Context keys: scholar, phase, body.
func Sidecast(ctx Context) model.PressRelease {
	return model.PressRelease{
		Type:     "sidecast_" + ctx.str("phase"),
		Headline: fmt.Sprintf("Sidecast %s: %s", titleCase(ctx.str("phase")), ctx.str("scholar")),
		Body:     ctx.str("body"),
		Metadata: metadataFrom(ctx, nil),
	}
}

// Generic layer constructors used by the planner for the ambient
// coverage layers (gossip, analysis, editorial, investigation, roundups)
// that accompany a primary press release at standard/extensive/breaking
// depth. All read "subject" and "body" from context.
func genericLayer(pressType, headlinePrefix string) func(Context) model.PressRelease {
	return func(ctx Context) model.PressRelease {
		return model.PressRelease{
			Type:     pressType,
			Headline: fmt.Sprintf("%s: %s", headlinePrefix, ctx.str("subject")),
			Body:     ctx.str("body"),
			Metadata: metadataFrom(ctx, nil),
		}
	}
}

var (
	AcademicGossip    = genericLayer("academic_gossip", "Overheard")
	Analysis          = genericLayer("analysis", "Analysis")
	Editorial         = genericLayer("editorial", "Editorial")
	Investigation     = genericLayer("investigation", "Investigation")
	FactionStatement  = genericLayer("faction_statement", "Faction Statement")
	DigestHighlights  = genericLayer("digest_highlights", "Digest Highlights")
	TableTalkDigest   = genericLayer("table_talk_digest", "Table Talk Digest")
	TableTalkRoundup  = genericLayer("table_talk_roundup", "Table Talk Roundup")
	RecruitmentBrief  = genericLayer("recruitment_brief", "Recruitment Brief")
	RecruitmentFollow = genericLayer("recruitment_followup", "Recruitment Followup")
	SidewaysFollowup  = genericLayer("sideways_followup", "Sideways Followup")
)

func titleCase(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
