// Utilities for parsing cURL commands copied from browser DevTools.
//
// Lets users import an existing web session (`s2s auth import`) by pasting
// the "Copy as cURL" output of any authenticated request.
package shared

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

const authCookieName = "s2s_auth"

// CurlSession represents headers and the auth cookie extracted from a cURL command.
type CurlSession struct {
	Headers map[string]string
	Cookie  string // full Cookie header value
}

// ParseCurlFile reads a .sh file containing a cURL command and extracts the session.
func ParseCurlFile(filepath string) (*CurlSession, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}

	return ParseCurlCommand(content)
}

// ParseCurlCommand parses a cURL command string and extracts headers and cookies.
func ParseCurlCommand(data []byte) (*CurlSession, error) {
	curlCmd := string(data)
	curlCmd = strings.ReplaceAll(curlCmd, "\\\n", " ")
	curlCmd = strings.ReplaceAll(curlCmd, "\\", "")

	headers := make(map[string]string)
	var cookie string

	headerRegex := regexp.MustCompile(`-H\s+'([^']+)'|-H\s+"([^"]+)"`)
	matches := headerRegex.FindAllStringSubmatch(curlCmd, -1)

	for _, match := range matches {
		headerLine := match[1]
		if headerLine == "" {
			headerLine = match[2]
		}

		parts := strings.SplitN(headerLine, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if strings.EqualFold(key, "cookie") {
			cookie = value
		} else {
			headers[key] = value
		}
	}

	cookieRegex := regexp.MustCompile(`-b\s+'([^']+)'|-b\s+"([^"]+)"`)
	if cookieMatches := cookieRegex.FindStringSubmatch(curlCmd); len(cookieMatches) > 1 {
		if cookieMatches[1] != "" {
			cookie = cookieMatches[1]
		} else {
			cookie = cookieMatches[2]
		}
	}

	if len(headers) == 0 && cookie == "" {
		return nil, fmt.Errorf("no headers found in curl command")
	}

	return &CurlSession{Headers: headers, Cookie: cookie}, nil
}

// AuthToken extracts the s2s_auth cookie value from the Cookie header, or ""
// if the session carries no auth cookie.
func (c *CurlSession) AuthToken() string {
	for _, pair := range strings.Split(c.Cookie, ";") {
		pair = strings.TrimSpace(pair)
		if value, ok := strings.CutPrefix(pair, authCookieName+"="); ok {
			return value
		}
	}
	return ""
}
