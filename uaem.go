package unlhauae

import (
	"fmt"
	"os"
	"time"
)

// UAEMSuffix is appended to a host file name to form its FS-UAE sidecar.
const UAEMSuffix = ".uaem"

const uaemTimeLayout = "2006-01-02 15:04:05.00"

// amigaEpoch stands in for entries without a timestamp.
var amigaEpoch = time.Date(1978, time.January, 1, 0, 0, 0, 0, time.UTC)

// FormatUAEM returns the sidecar line for info: protection flags, time and
// comment separated by single spaces.
func FormatUAEM(info *EntryInfo, loc *time.Location) string {
	return fmt.Sprintf("%s %s %s\n",
		FormatProtection(info.Protection),
		formatUAEMTime(info.ModTime, loc),
		Transcode(info.Comment))
}

func formatUAEMTime(ts Timestamp, loc *time.Location) string {
	switch ts.Kind {
	case TimeNaive:
		return ts.Time.Format(uaemTimeLayout)
	case TimeZoned:
		return ts.In(loc).Format(uaemTimeLayout)
	default:
		return amigaEpoch.Format(uaemTimeLayout)
	}
}

// writeUAEM replaces any existing sidecar of hostPath.
func writeUAEM(info *EntryInfo, hostPath string, loc *time.Location) error {
	return os.WriteFile(hostPath+UAEMSuffix, []byte(FormatUAEM(info, loc)), 0o644)
}
