//go:build unix

package clock

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

func (Realtime) Seconds() (float64, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_REALTIME, &ts); err != nil {
		return 0, errors.Wrap(err, "clock_gettime(CLOCK_REALTIME)")
	}
	return float64(ts.Sec) + float64(ts.Nsec)/1e9, nil
}
