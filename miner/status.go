package miner

// Phase is a worker's position in its mining cycle.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseCheckingCooldown
	PhaseWaiting
	PhaseQueuedForCompute
	PhaseComputing
	PhaseSubmitting
	PhaseSucceeded
	PhaseSoftRejected
	PhaseFailed
	PhaseStopped
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseCheckingCooldown:
		return "checking_cooldown"
	case PhaseWaiting:
		return "waiting"
	case PhaseQueuedForCompute:
		return "queued"
	case PhaseComputing:
		return "computing"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseSoftRejected:
		return "soft_rejected"
	case PhaseFailed:
		return "failed"
	case PhaseStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// AccountStatus is the per-account view in a status snapshot.
type AccountStatus struct {
	Name     string `json:"name"`
	Cooldown int    `json:"cooldown"`
	Running  bool   `json:"running"`
	Phase    string `json:"phase"`
	Status   string `json:"status"`
}

// Snapshot is the read-only reporting payload consumed by the dashboard.
type Snapshot struct {
	Total    int             `json:"total"`
	Running  int             `json:"running"`
	FeePayer string          `json:"fee_payer"`
	Accounts []AccountStatus `json:"accounts"`
	Logs     []LogEntry      `json:"logs"`
}
