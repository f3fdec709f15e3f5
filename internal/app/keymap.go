package app

import "github.com/jwulff/memo/internal/export"

// Key binding constants used in handleKey.
const (
	KeyQuit        = "q"
	KeyQuitUpper   = "Q"
	KeyCtrlC       = "ctrl+c"
	KeyEsc         = "esc"
	KeySpace       = " "
	KeyUp          = "up"
	KeyDown        = "down"
	KeyJ           = "j"
	KeyK           = "k"
	KeyEnter       = "enter"
	KeyVideo       = "v"
	KeyAudio       = "a"
	KeyHistory     = "h"
	KeyFacing      = "f"
	KeyDownload    = "d"
	KeyTranscribe  = "t"
	KeyCopy        = "c"
	KeySaveTXT     = "s"
	KeySavePDF     = "p"
	KeySaveDOCX    = "w"
	KeySaveXLSX    = "x"
	KeyToggleTheme = "T"
)

// saveKeys maps each transcript download key to its format.
var saveKeys = map[string]export.Format{
	KeySaveTXT:  export.TXT,
	KeySavePDF:  export.PDF,
	KeySaveDOCX: export.DOCX,
	KeySaveXLSX: export.XLSX,
}

// saveKey returns the key bound to f.
func saveKey(f export.Format) string {
	for k, v := range saveKeys {
		if v == f {
			return k
		}
	}
	return ""
}
