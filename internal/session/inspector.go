package session

import "ragchat/internal/domain"

// Inspector is a projection over the conversation log: it points at the
// sources of the most recently selected assistant exchange. It holds a
// reference to that exchange's source list, never a copy, so the inspected
// content is exactly what the backend returned for that answer.
type Inspector struct {
	sources []domain.SourceRef
}

func NewInspector() *Inspector { return &Inspector{} }

// Select points the inspector at the exchange's sources. Selecting an
// exchange that carries no sources is a no-op; the most recent effective
// selection wins.
func (i *Inspector) Select(ex domain.Exchange) {
	if ex.Role != domain.RoleAssistant || len(ex.Sources) == 0 {
		return
	}
	i.sources = ex.Sources
}

// Sources returns the selected exchange's sources in backend relevance
// order, or nil when nothing has been selected yet.
func (i *Inspector) Sources() []domain.SourceRef { return i.sources }
