package session

import "math/rand"

// stealthScript masks the navigator-level signals sites probe to detect
// automation. Injected on every new document before page scripts run.
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', {
    get: () => undefined,
});

Object.defineProperty(navigator, 'plugins', {
    get: () => [1, 2, 3, 4, 5],
});

Object.defineProperty(navigator, 'languages', {
    get: () => ['en-US', 'en'],
});

window.chrome = {
    runtime: {},
};
`

// userAgents are realistic desktop identities rotated per session
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:127.0) Gecko/20100101 Firefox/127.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Safari/605.1.15",
}

// RandomUserAgent picks one realistic user agent
func RandomUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}

// defaultHeaders mimic a real browser's request header set
var defaultHeaders = map[string]interface{}{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.9",
	"Accept-Encoding":           "gzip, deflate, br",
	"Upgrade-Insecure-Requests": "1",
}

// loadingSelectors are the indicators AwaitDynamicContent polls for
// detachment after network idle
var loadingSelectors = []string{
	`[class*="loading"]`,
	`[class*="spinner"]`,
	`[class*="skeleton"]`,
	".loading",
	".spinner",
}

// captchaIndicators are the challenge substrings DetectCaptcha scans
// for in the rendered page text (case-insensitive)
var captchaIndicators = []string{
	"captcha",
	"recaptcha",
	"hcaptcha",
	"i'm not a robot",
	"unusual traffic",
}
