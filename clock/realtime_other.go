//go:build !unix

package clock

import "time"

func (Realtime) Seconds() (float64, error) {
	now := time.Now()
	return float64(now.Unix()) + float64(now.Nanosecond())/1e9, nil
}
