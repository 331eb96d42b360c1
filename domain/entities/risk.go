package entities

// RiskTier classifies how dangerous an action is. Derived from the action
// kind and static rules, never stored.
type RiskTier int

const (
	RiskLow RiskTier = iota
	RiskMedium
	RiskHigh
	RiskCritical
)

// String returns the human-readable name of the tier.
func (t RiskTier) String() string {
	switch t {
	case RiskLow:
		return "Low"
	case RiskMedium:
		return "Medium"
	case RiskHigh:
		return "High"
	case RiskCritical:
		return "Critical"
	default:
		return "Unknown"
	}
}

// riskAssessorConfig holds configuration for the RiskAssessor.
type riskAssessorConfig struct {
	maxFileSizeBytes int64
}

func defaultRiskAssessorConfig() riskAssessorConfig {
	return riskAssessorConfig{
		maxFileSizeBytes: 5 * 1024 * 1024,
	}
}

// RiskAssessorOption configures a RiskAssessor instance.
type RiskAssessorOption func(*riskAssessorConfig)

// WithMaxFileSize sets the byte threshold above which file operations
// escalate from Low to Medium.
func WithMaxFileSize(n int64) RiskAssessorOption {
	return func(c *riskAssessorConfig) {
		if n > 0 {
			c.maxFileSizeBytes = n
		}
	}
}

// RiskAssessor derives the risk tier of an ActionRequest.
type RiskAssessor struct {
	config riskAssessorConfig
}

// NewRiskAssessor creates a RiskAssessor with the given options.
func NewRiskAssessor(opts ...RiskAssessorOption) *RiskAssessor {
	cfg := defaultRiskAssessorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &RiskAssessor{config: cfg}
}

// MaxFileSizeBytes returns the configured escalation threshold.
func (a *RiskAssessor) MaxFileSizeBytes() int64 {
	return a.config.maxFileSizeBytes
}

// Assess returns the risk tier for a request. Shell execution is always
// Critical regardless of hints. File operations above the size threshold
// escalate one step so that even in-sandbox bulk writes force a prompt.
func (a *RiskAssessor) Assess(req ActionRequest) RiskTier {
	tier := req.Kind.BaseRiskTier()
	if req.Kind == ActionShellExec {
		return RiskCritical
	}
	if req.Kind.TargetsFilesystem() && req.SizeBytes > a.config.maxFileSizeBytes {
		if tier < RiskMedium {
			tier = RiskMedium
		} else if tier < RiskHigh {
			tier = RiskHigh
		}
	}
	return tier
}
