package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("STETICSOFT_TEST_MODE") == "" {
			_ = os.Setenv("STETICSOFT_TEST_MODE", "1")
		}
	})
}
