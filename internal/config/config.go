// Package config loads and validates the Great Work TOML configuration:
// a Duration wrapper that unmarshals from TOML strings like "60s", an
// applyDefaults/validate pair run at Load, and a ConfigManager
// (RWMutexManager) for picking up edits on SIGHUP without a restart.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration is a time.Duration that unmarshals from TOML strings like "60s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ReputationBounds is the configured [min, max] for player reputation.
type ReputationBounds struct {
	Min int `toml:"min"`
	Max int `toml:"max"`
}

// Wager is the reward/penalty pair for one confidence level.
type Wager struct {
	Reward                   int  `toml:"reward"`
	Penalty                  int  `toml:"penalty"`
	TriggersRecruitmentCooldown bool `toml:"triggers_recruitment_cooldown"`
}

// InfluenceCaps describes the per-faction influence ceiling formula:
// cap = Base + PerReputation * reputation.
type InfluenceCaps struct {
	Base          int     `toml:"base"`
	PerReputation float64 `toml:"per_reputation"`
}

// ContractConfig configures per-scholar contract upkeep and debt reprisal.
type ContractConfig struct {
	UpkeepPerScholar       int      `toml:"upkeep_per_scholar"`
	DebtReprisalThreshold  int      `toml:"debt_reprisal_threshold"`
	DebtReprisalPenalty    int      `toml:"debt_reprisal_penalty"`
	DebtReprisalCooldown   Duration `toml:"debt_reprisal_cooldown_days"`
}

// SeasonalConfig configures seasonal commitments.
type SeasonalConfig struct {
	BaseCost            int      `toml:"base_cost"`
	DurationDays        int      `toml:"duration_days"`
	MinRelationship     float64  `toml:"min_relationship"`
	RelationshipWeight  float64  `toml:"relationship_weight"`
	ReprisalThreshold   int      `toml:"reprisal_threshold"`
	ReprisalPenalty     int      `toml:"reprisal_penalty"`
	ReprisalCooldown    Duration `toml:"reprisal_cooldown_days"`
}

// FactionProjectConfig configures faction project progress.
type FactionProjectConfig struct {
	BaseProgressWeight float64 `toml:"base_progress_weight"`
	RelationshipWeight float64 `toml:"relationship_weight"`
	CompletionReward   int     `toml:"completion_reward"`
}

// FactionInvestmentConfig configures the direct influence-sink minimums.
type FactionInvestmentConfig struct {
	MinAmount   int `toml:"min_amount"`
	FeelingStep int `toml:"feeling_step"`
	FeelingBonus float64 `toml:"feeling_bonus"`
}

// ArchiveEndowmentConfig configures endowment minimums and reputation bonus.
type ArchiveEndowmentConfig struct {
	MinAmount          int `toml:"min_amount"`
	ReputationThreshold int `toml:"reputation_threshold"`
	ReputationBonus    int `toml:"reputation_bonus"`
}

// SymposiumScoringConfig configures proposal selection scoring.
type SymposiumScoringConfig struct {
	FreshBonus   float64 `toml:"fresh_bonus"`
	RepeatPenalty float64 `toml:"repeat_penalty"`
	AgeWeight    float64 `toml:"age_weight"`
	MaxAgeDays   int     `toml:"max_age_days"`
}

// SymposiumConfig configures the symposium subsystem end to end.
type SymposiumConfig struct {
	PledgeBase            int                    `toml:"pledge_base"`
	PledgeEscalationCap    int                    `toml:"pledge_escalation_cap"`
	GraceMisses            int                    `toml:"grace_misses"`
	GraceWindowDays        int                    `toml:"grace_window_days"`
	FirstReminderHours     int                    `toml:"first_reminder_hours"`
	EscalationHours        int                    `toml:"escalation_hours"`
	MaxBacklog             int                    `toml:"max_backlog"`
	MaxPerPlayer           int                    `toml:"max_per_player"`
	ProposalExpiryDays     int                    `toml:"proposal_expiry_days"`
	RecentWindow           int                    `toml:"recent_window"`
	Scoring                SymposiumScoringConfig `toml:"scoring"`
	DebtReprisalThreshold  int                    `toml:"debt_reprisal_threshold"`
	DebtReprisalPenalty    int                    `toml:"debt_reprisal_penalty"`
	DebtReprisalCooldown   Duration               `toml:"debt_reprisal_cooldown_days"`
}

// Settings is the top-level Great Work configuration.
type Settings struct {
	General            General                         `toml:"general"`
	ReputationBounds   ReputationBounds                `toml:"reputation_bounds"`
	ConfidenceWagers   map[string]Wager                `toml:"confidence_wagers"`
	ActionThresholds   map[string]int                  `toml:"action_thresholds"`
	InfluenceCaps      InfluenceCaps                   `toml:"influence_caps"`
	Contract           ContractConfig                  `toml:"contract"`
	Seasonal           SeasonalConfig                  `toml:"seasonal_commitment"`
	FactionProject     FactionProjectConfig            `toml:"faction_project"`
	FactionInvestment  FactionInvestmentConfig         `toml:"faction_investment"`
	ArchiveEndowment   ArchiveEndowmentConfig          `toml:"archive_endowment"`
	Symposium          SymposiumConfig                 `toml:"symposium"`
	Expedition         ExpeditionConfig                `toml:"expedition"`
	Roster             RosterConfig                    `toml:"roster"`
	DataDir            string                          `toml:"data_dir"`
	TonePack           string                           `toml:"tone_pack"`
}

// General holds process-wide timing and pause settings.
type General struct {
	TickInterval       Duration `toml:"tick_interval"`
	StateDB            string   `toml:"state_db"`
	LockFile           string   `toml:"lock_file"`
	LogLevel           string   `toml:"log_level"`
	LLMPauseTimeout    Duration `toml:"llm_pause_timeout"`
	LLMTimeout         Duration `toml:"llm_timeout"`
	TimelineStartYear  int      `toml:"timeline_start_year"`
	DaysPerYear        int      `toml:"time_scale_days_per_year"`
	Seed               int64    `toml:"seed"`
}

// ExpeditionConfig configures the resolver's outcome thresholds and
// funding/reward tables, keyed by expedition type.
type ExpeditionConfig struct {
	FailureMax int            `toml:"failure_max"` // score < this -> failure
	PartialMax int            `toml:"partial_max"` // score < this -> partial, else success
	LandmarkMin int           `toml:"landmark_min"` // score >= this -> landmark
	CostsByType map[string]int `toml:"costs_by_type"`
	RewardsByType map[string]int `toml:"rewards_by_type"`
	SidewaysChance float64 `toml:"sideways_chance"`
}

// RosterConfig bounds the scholar roster size.
type RosterConfig struct {
	Min int `toml:"min_roster"`
	Max int `toml:"max_roster"`
}

// Load reads and validates a Great Work TOML configuration file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Settings
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config keys: %v", undecoded)
	}

	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Settings) {
	if cfg.General.TickInterval.Duration == 0 {
		cfg.General.TickInterval.Duration = 60 * time.Second
	}
	if cfg.General.LogLevel == "" {
		cfg.General.LogLevel = "info"
	}
	if cfg.General.LLMPauseTimeout.Duration == 0 {
		cfg.General.LLMPauseTimeout.Duration = 600 * time.Second
	}
	if cfg.General.LLMTimeout.Duration == 0 {
		cfg.General.LLMTimeout.Duration = 30 * time.Second
	}
	if cfg.General.DaysPerYear == 0 {
		cfg.General.DaysPerYear = 365
	}
	if cfg.General.TimelineStartYear == 0 {
		cfg.General.TimelineStartYear = 1
	}
	if cfg.General.StateDB == "" {
		cfg.General.StateDB = "greatwork.db"
	}

	if cfg.ReputationBounds.Min == 0 && cfg.ReputationBounds.Max == 0 {
		cfg.ReputationBounds = ReputationBounds{Min: -20, Max: 100}
	}

	if cfg.ConfidenceWagers == nil {
		cfg.ConfidenceWagers = map[string]Wager{}
	}
	defaultWager := func(level string, reward, penalty int, cooldown bool) {
		if _, ok := cfg.ConfidenceWagers[level]; !ok {
			cfg.ConfidenceWagers[level] = Wager{Reward: reward, Penalty: penalty, TriggersRecruitmentCooldown: cooldown}
		}
	}
	defaultWager("suspect", 2, 1, false)
	defaultWager("certain", 5, 3, false)
	defaultWager("stake_my_career", 15, 10, true)

	if cfg.ActionThresholds == nil {
		cfg.ActionThresholds = map[string]int{}
	}
	defaultThreshold := func(action string, value int) {
		if _, ok := cfg.ActionThresholds[action]; !ok {
			cfg.ActionThresholds[action] = value
		}
	}
	defaultThreshold("theory", -10)
	defaultThreshold("expedition_think_tank", -5)
	defaultThreshold("expedition_field", 0)
	defaultThreshold("expedition_great_project", 10)
	defaultThreshold("recruitment", -5)

	if cfg.InfluenceCaps.Base == 0 {
		cfg.InfluenceCaps.Base = 10
	}
	if cfg.InfluenceCaps.PerReputation == 0 {
		cfg.InfluenceCaps.PerReputation = 0.5
	}

	if cfg.Contract.UpkeepPerScholar == 0 {
		cfg.Contract.UpkeepPerScholar = 1
	}
	if cfg.Contract.DebtReprisalThreshold == 0 {
		cfg.Contract.DebtReprisalThreshold = 5
	}
	if cfg.Contract.DebtReprisalPenalty == 0 {
		cfg.Contract.DebtReprisalPenalty = 2
	}
	if cfg.Contract.DebtReprisalCooldown.Duration == 0 {
		cfg.Contract.DebtReprisalCooldown.Duration = 7 * 24 * time.Hour
	}

	if cfg.Seasonal.BaseCost == 0 {
		cfg.Seasonal.BaseCost = 5
	}
	if cfg.Seasonal.DurationDays == 0 {
		cfg.Seasonal.DurationDays = 90
	}
	if cfg.Seasonal.RelationshipWeight == 0 {
		cfg.Seasonal.RelationshipWeight = 1.0
	}
	if cfg.Seasonal.ReprisalThreshold == 0 {
		cfg.Seasonal.ReprisalThreshold = 5
	}
	if cfg.Seasonal.ReprisalPenalty == 0 {
		cfg.Seasonal.ReprisalPenalty = 2
	}
	if cfg.Seasonal.ReprisalCooldown.Duration == 0 {
		cfg.Seasonal.ReprisalCooldown.Duration = 7 * 24 * time.Hour
	}

	if cfg.FactionProject.BaseProgressWeight == 0 {
		cfg.FactionProject.BaseProgressWeight = 0.1
	}
	if cfg.FactionProject.CompletionReward == 0 {
		cfg.FactionProject.CompletionReward = 5
	}

	if cfg.FactionInvestment.MinAmount == 0 {
		cfg.FactionInvestment.MinAmount = 1
	}
	if cfg.FactionInvestment.FeelingStep == 0 {
		cfg.FactionInvestment.FeelingStep = 5
	}
	if cfg.FactionInvestment.FeelingBonus == 0 {
		cfg.FactionInvestment.FeelingBonus = 0.5
	}

	if cfg.ArchiveEndowment.MinAmount == 0 {
		cfg.ArchiveEndowment.MinAmount = 5
	}
	if cfg.ArchiveEndowment.ReputationThreshold == 0 {
		cfg.ArchiveEndowment.ReputationThreshold = 10
	}
	if cfg.ArchiveEndowment.ReputationBonus == 0 {
		cfg.ArchiveEndowment.ReputationBonus = 1
	}

	if cfg.Symposium.PledgeBase == 0 {
		cfg.Symposium.PledgeBase = 2
	}
	if cfg.Symposium.PledgeEscalationCap == 0 {
		cfg.Symposium.PledgeEscalationCap = 5
	}
	if cfg.Symposium.GraceWindowDays == 0 {
		cfg.Symposium.GraceWindowDays = 30
	}
	if cfg.Symposium.FirstReminderHours == 0 {
		cfg.Symposium.FirstReminderHours = 24
	}
	if cfg.Symposium.EscalationHours == 0 {
		cfg.Symposium.EscalationHours = 48
	}
	if cfg.Symposium.MaxBacklog == 0 {
		cfg.Symposium.MaxBacklog = 20
	}
	if cfg.Symposium.MaxPerPlayer == 0 {
		cfg.Symposium.MaxPerPlayer = 2
	}
	if cfg.Symposium.ProposalExpiryDays == 0 {
		cfg.Symposium.ProposalExpiryDays = 14
	}
	if cfg.Symposium.RecentWindow == 0 {
		cfg.Symposium.RecentWindow = 4
	}
	if cfg.Symposium.Scoring.FreshBonus == 0 {
		cfg.Symposium.Scoring.FreshBonus = 2
	}
	if cfg.Symposium.Scoring.RepeatPenalty == 0 {
		cfg.Symposium.Scoring.RepeatPenalty = 1.5
	}
	if cfg.Symposium.Scoring.AgeWeight == 0 {
		cfg.Symposium.Scoring.AgeWeight = 1
	}
	if cfg.Symposium.Scoring.MaxAgeDays == 0 {
		cfg.Symposium.Scoring.MaxAgeDays = 14
	}
	if cfg.Symposium.DebtReprisalThreshold == 0 {
		cfg.Symposium.DebtReprisalThreshold = 5
	}
	if cfg.Symposium.DebtReprisalPenalty == 0 {
		cfg.Symposium.DebtReprisalPenalty = 2
	}
	if cfg.Symposium.DebtReprisalCooldown.Duration == 0 {
		cfg.Symposium.DebtReprisalCooldown.Duration = 7 * 24 * time.Hour
	}

	if cfg.Expedition.FailureMax == 0 {
		cfg.Expedition.FailureMax = 35
	}
	if cfg.Expedition.PartialMax == 0 {
		cfg.Expedition.PartialMax = 65
	}
	if cfg.Expedition.LandmarkMin == 0 {
		cfg.Expedition.LandmarkMin = 90
	}
	if cfg.Expedition.SidewaysChance == 0 {
		cfg.Expedition.SidewaysChance = 0.2
	}
	if cfg.Expedition.CostsByType == nil {
		cfg.Expedition.CostsByType = map[string]int{
			"think_tank": 1, "field": 3, "great_project": 8,
		}
	}
	if cfg.Expedition.RewardsByType == nil {
		cfg.Expedition.RewardsByType = map[string]int{
			"think_tank": 2, "field": 5, "great_project": 12,
		}
	}

	if cfg.Roster.Min == 0 {
		cfg.Roster.Min = 20
	}
	if cfg.Roster.Max == 0 {
		cfg.Roster.Max = 30
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
}

func validate(cfg *Settings) error {
	if cfg.ReputationBounds.Min >= cfg.ReputationBounds.Max {
		return fmt.Errorf("reputation_bounds.min must be < max")
	}
	if cfg.Roster.Min > cfg.Roster.Max {
		return fmt.Errorf("roster.min_roster must be <= max_roster")
	}
	if cfg.Expedition.FailureMax >= cfg.Expedition.PartialMax {
		return fmt.Errorf("expedition.failure_max must be < partial_max")
	}
	if cfg.Expedition.PartialMax > cfg.Expedition.LandmarkMin {
		return fmt.Errorf("expedition.partial_max must be <= landmark_min")
	}
	for level := range cfg.ConfidenceWagers {
		switch level {
		case "suspect", "certain", "stake_my_career":
		default:
			return fmt.Errorf("unknown confidence level %q in confidence_wagers", level)
		}
	}
	return nil
}

// ExpandHome expands a leading "~" in path to the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return home + strings.TrimPrefix(path, "~")
}
