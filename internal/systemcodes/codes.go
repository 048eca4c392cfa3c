package systemcodes

const (
	ErrorCodeGeneric = 1
	ErrorCodeUsage   = 2
	ErrorCodeConfig  = 3
	ErrorCodeAborted = 4
)
