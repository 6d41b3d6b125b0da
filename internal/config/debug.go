package config

import "os"

func IsDebug() bool {
	return os.Getenv("CHATTY_DEBUG") == "1"
}
