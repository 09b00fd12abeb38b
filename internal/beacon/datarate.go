package beacon

// DataRate identifies a LoRa spreading-factor/bandwidth combination. The
// numeric values are the wire-level tags carried in beacon reports.
type DataRate int32

const (
	SF12BW125 DataRate = 0
	SF11BW125 DataRate = 1
	SF10BW125 DataRate = 2
	SF9BW125  DataRate = 3
	SF8BW125  DataRate = 4
	SF7BW125  DataRate = 5
)

func (d DataRate) String() string {
	switch d {
	case SF12BW125:
		return "SF12BW125"
	case SF11BW125:
		return "SF11BW125"
	case SF10BW125:
		return "SF10BW125"
	case SF9BW125:
		return "SF9BW125"
	case SF8BW125:
		return "SF8BW125"
	case SF7BW125:
		return "SF7BW125"
	default:
		return "UNKNOWN"
	}
}
