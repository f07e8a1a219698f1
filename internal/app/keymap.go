package app

// Key binding constants used in handleKey.
const (
	KeyQuit      = "q"
	KeyQuitUpper = "Q"
	KeyCtrlC     = "ctrl+c"
	KeySpace     = " "
	KeyNew       = "n"
	KeyNewUpper  = "N"
	KeySave      = "s"
	KeySaveUpper = "S"
	KeyRetry     = "r"
)
