package mpu401

/*------------------------------------------------------------------
 *
 * Purpose:	Structured logging for the sequencer core, replacing the
 *		teacher's hand-rolled textcolor.go/dw_printf pair with
 *		github.com/charmbracelet/log.
 *
 * Description:	Each component (router, mpu401, metronome, ...) gets its
 *		own named *log.Logger so a guest session with several
 *		peripherals active doesn't produce an undifferentiated
 *		stream. Severity mapping follows the original's color
 *		coding: DW_COLOR_ERROR -> Error, DW_COLOR_DEBUG -> Debug,
 *		DW_COLOR_INFO -> Info.
 *
 *---------------------------------------------------------------*/

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"
)

var baseLogger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      time.Kitchen,
})

func deviceLogger(component string) *log.Logger {
	return baseLogger.WithPrefix("mpu401." + component)
}

// logFilePattern expands a strftime pattern (e.g. "trace-%Y%m%d-%H%M%S.log")
// into a concrete path for the optional on-disk trace file. Matches the
// teacher's xmit.go/tq.go use of lestrrat-go/strftime for timestamped
// output file names.
func logFilePattern(pattern string, at time.Time) (string, error) {
	f, err := strftime.New(pattern)
	if err != nil {
		return "", err
	}
	return f.FormatString(at), nil
}
