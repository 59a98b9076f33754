package compass

import (
	"github.com/Ch00k/cloud-compass/internal/distance"
	"github.com/Ch00k/cloud-compass/internal/position"
	"github.com/Ch00k/cloud-compass/internal/regions"
)

// RankedTitle heads a ranked result
const RankedTitle = "List of nearest data centers"

// ViewState is what the presentation layer should show
type ViewState int

// View state constants
const (
	ViewLoading     ViewState = iota // Directory fetch outstanding
	ViewError                        // Directory fetch failed
	ViewNoSelection                  // No provider selected yet
	ViewUnranked                     // Filtered regions, observer position unavailable
	ViewRanked                       // Filtered regions ordered by distance
)

func (s ViewState) String() string {
	switch s {
	case ViewLoading:
		return "loading"
	case ViewError:
		return "error"
	case ViewNoSelection:
		return "no_selection"
	case ViewUnranked:
		return "unranked"
	case ViewRanked:
		return "ranked"
	default:
		return "unknown"
	}
}

// View is a snapshot of a session's output
type View struct {
	State    ViewState              `json:"-"`
	Status   string                 `json:"state"`
	Title    string                 `json:"title,omitempty"`
	Message  string                 `json:"message,omitempty"`
	Reason   string                 `json:"position_reason,omitempty"`
	Provider regions.ProviderFilter `json:"provider"`
	Observer *distance.Point        `json:"observer,omitempty"`
	Regions  []regions.Region       `json:"regions"`
	Err      error                  `json:"-"`
	Position *position.Error        `json:"-"`
}

// positionReasonPending is reported while the position lookup is still outstanding
const positionReasonPending = "pending"
