package submitter

type Status int

const (
	Unknown Status = iota
	Submitted
	Mined
	Failed
)

func (s Status) String() string {
	switch s {
	case Submitted:
		return "Submitted"
	case Mined:
		return "Mined"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}
