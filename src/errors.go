package mpu401

/*------------------------------------------------------------------
 *
 * Purpose:	Error handling policy (spec.md §7): nothing in this
 *		package aborts the process over a guest-triggered
 *		condition. Internal invariant violations - the sort of
 *		thing the teacher's util.go "Assert()" would abort on in
 *		the C original - are logged and the caller backs out
 *		instead, because this code is servicing a live guest.
 *
 *---------------------------------------------------------------*/

func assertf(logger interface{ Errorf(string, ...any) }, cond bool, format string, args ...any) bool {
	if !cond {
		logger.Errorf(format, args...)
	}
	return cond
}
