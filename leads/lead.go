package leads

import "time"

type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusQualified Status = "qualified"
	StatusProposal  Status = "proposal"
	StatusWon       Status = "won"
	StatusLost      Status = "lost"
)

// Statuses lists the pipeline stages in board order.
var Statuses = []Status{StatusNew, StatusContacted, StatusQualified, StatusProposal, StatusWon, StatusLost}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Lead is an inbound sales contact. Any status may move to any other.
type Lead struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Company   string    `json:"company,omitempty"`
	Message   string    `json:"message,omitempty"`
	Status    Status    `json:"status"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
	Notes     string    `json:"notes,omitempty"`
}

// CountByStatus tallies leads per pipeline stage.
func CountByStatus(items []Lead) map[Status]int {
	counts := make(map[Status]int, len(Statuses))
	for _, l := range items {
		counts[l.Status]++
	}
	return counts
}
