package unlhauae

const (
	readBuffer  = 256 * 1024
	writeBuffer = readBuffer

	// Level 0/1 headers start with a size byte; level 2 with a 16-bit size.
	// Either way byte 20 holds the level.
	baseHeaderSize = 21
	levelOffset    = 20
)

// Compression methods
const (
	methodDir   = "-lhd-"
	methodLH0   = "-lh0-"
	methodLZ4   = "-lz4-"
	methodLH4   = "-lh4-"
	methodLH5   = "-lh5-"
	methodLH6   = "-lh6-"
	methodLH7   = "-lh7-"
	methodWidth = 5
)

// Extended header tags
const (
	extHeaderCRC   byte = 0x00
	extFilename    byte = 0x01
	extDirectory   byte = 0x02
	extComment     byte = 0x3f
	extAttributes  byte = 0x40
	extWindowsTime byte = 0x41
	extUnixTime    byte = 0x54

	// Amiga LhA writes level 2 comments under this undocumented tag.
	extAmigaComment byte = 0x71
)

const (
	pathSeparator   byte = 0xff
	level0Separator byte = '\\'
)

// Origin OS identifiers
const (
	osGeneric byte = 0
	osAmiga   byte = 'A'
	osMSDOS   byte = 'M'
	osUnix    byte = 'U'
	osOS2     byte = '2'
	osMacOS   byte = 'm'
	osJava    byte = 'J'
	osWin32   byte = 'w'
	osWinNT   byte = 'W'
	osHuman68 byte = 'H'
	osOS9     byte = '9'
)

var osNames = map[byte]string{
	osGeneric: "generic",
	osAmiga:   "Amiga",
	osMSDOS:   "MS-DOS",
	osUnix:    "Unix",
	osOS2:     "OS/2",
	osMacOS:   "Mac OS",
	osJava:    "Java",
	osWin32:   "Win32",
	osWinNT:   "WinNT",
	osHuman68: "Human68K",
	osOS9:     "OS-9",
}
