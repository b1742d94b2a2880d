package status

// Merge combines the rendered log and probe statuses. An empty log status
// means the log gave no signal. When both are present and differ, both are
// shown so the operator sees the discrepancy.
func Merge(logStatus, probeStatus string) string {
	switch {
	case logStatus != "" && probeStatus != "":
		if logStatus != probeStatus {
			return logStatus + " / " + probeStatus
		}
		return logStatus
	case logStatus != "":
		return logStatus
	default:
		return probeStatus
	}
}
