package util

const (
	DateFormat  = "2006-01-02"
	ClockFormat = "15:04"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	MimeImage        = "image/"
	MaxAvatarBytes   = 5 << 20
	MaxSignalLength  = 120
	SignalListLimit  = 50
	MaxSignalListCap = 200
)

var (
	AllowedImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
)
