package utils

import (
	"sync"

	"github.com/mojocn/base64Captcha"
)

var (
	captchaStore   base64Captcha.Store = base64Captcha.DefaultMemStore
	captchaStoreMu sync.RWMutex
)

// UseCaptchaStore swaps the answer store, e.g. for the Redis backed one.
func UseCaptchaStore(s base64Captcha.Store) {
	captchaStoreMu.Lock()
	captchaStore = s
	captchaStoreMu.Unlock()
}

func currentCaptchaStore() base64Captcha.Store {
	captchaStoreMu.RLock()
	defer captchaStoreMu.RUnlock()
	return captchaStore
}

// GenerateCaptcha creates a captcha and returns (id, dataURI) for frontend to display.
func GenerateCaptcha() (string, string, error) {
	// digits: height 40, width 120, length 5
	driver := base64Captcha.NewDriverDigit(40, 120, 5, 0.7, 80)
	c := base64Captcha.NewCaptcha(driver, currentCaptchaStore())
	id, b64, _, err := c.Generate()
	return id, b64, err
}

// VerifyCaptcha verifies the provided answer; it consumes the captcha on success.
func VerifyCaptcha(id, answer string) bool {
	if id == "" || answer == "" {
		return false
	}
	return currentCaptchaStore().Verify(id, answer, true)
}
