package domain

import (
	"net/url"
	"strings"
)

type MatchType string

const (
	MatchApp     MatchType = "app"
	MatchDomain  MatchType = "domain"
	MatchKeyword MatchType = "keyword"
)

// Rule maps a pattern to a category. Patterns are case-insensitive
// substrings: app rules match the foreground application name, domain rules
// match the URL host, keyword rules match url+title.
type Rule struct {
	Match    MatchType `yaml:"match"`
	Pattern  string    `yaml:"pattern"`
	Category Category  `yaml:"category"`
}

func (r Rule) Validate() error {
	return r.Category.Validate()
}

// Ruleset is the full classification table. Overrides are user-defined and
// always win over built-in rules.
type Ruleset struct {
	Browsers  []string            `yaml:"browsers"`
	Apps      []Rule              `yaml:"apps"`
	Domains   []Rule              `yaml:"domains"`
	Keywords  []Rule              `yaml:"keywords"`
	Overrides []Rule              `yaml:"overrides"`
	Effects   map[Category]Effect `yaml:"effects"`
}

// Signal is one raw activity sample from the provider.
type Signal struct {
	AppName string `json:"app_name"`
	URL     string `json:"url,omitempty"`
	Title   string `json:"title,omitempty"`
}

// Classification is the classifier's verdict for one signal.
type Classification struct {
	Category Category
	State    DinoState
	Browsing bool
	Domain   string
}

func DefaultRuleset() Ruleset {
	return Ruleset{
		Browsers: []string{"chrome", "safari", "firefox", "arc", "brave", "edge"},
		Apps: []Rule{
			{MatchApp, "code", CategoryCoding},
			{MatchApp, "xcode", CategoryCoding},
			{MatchApp, "vim", CategoryCoding},
			{MatchApp, "sublime", CategoryCoding},
			{MatchApp, "cursor", CategoryCoding},
			{MatchApp, "terminal", CategoryCoding},
			{MatchApp, "iterm", CategoryCoding},
			{MatchApp, "goland", CategoryCoding},
			{MatchApp, "intellij", CategoryCoding},
			{MatchApp, "slack", CategoryWork},
			{MatchApp, "teams", CategoryWork},
			{MatchApp, "zoom", CategoryWork},
			{MatchApp, "notion", CategoryWork},
			{MatchApp, "trello", CategoryWork},
			{MatchApp, "figma", CategoryDesigning},
			{MatchApp, "sketch", CategoryDesigning},
			{MatchApp, "photoshop", CategoryDesigning},
			{MatchApp, "steam", CategoryGaming},
		},
		Domains: []Rule{
			{MatchDomain, "github.com", CategoryCoding},
			{MatchDomain, "gitlab.com", CategoryCoding},
			{MatchDomain, "bitbucket.org", CategoryCoding},
			{MatchDomain, "stackoverflow.com", CategoryCoding},
			{MatchDomain, "codepen.io", CategoryCoding},
			{MatchDomain, "replit.com", CategoryCoding},
			{MatchDomain, "docs.", CategoryLearning},
			{MatchDomain, "developer.", CategoryLearning},
			{MatchDomain, "learn.", CategoryLearning},
			{MatchDomain, "coursera.org", CategoryLearning},
			{MatchDomain, "udemy.com", CategoryLearning},
			{MatchDomain, "khanacademy.org", CategoryLearning},
			{MatchDomain, "wikipedia.org", CategoryLearning},
			{MatchDomain, "scholar.google.com", CategoryLearning},
			{MatchDomain, "dev.to", CategoryLearning},
			{MatchDomain, "figma.com", CategoryDesigning},
			{MatchDomain, "dribbble.com", CategoryDesigning},
			{MatchDomain, "behance.net", CategoryDesigning},
			{MatchDomain, "canva.com", CategoryDesigning},
			{MatchDomain, "notion.so", CategoryWork},
			{MatchDomain, "trello.com", CategoryWork},
			{MatchDomain, "asana.com", CategoryWork},
			{MatchDomain, "monday.com", CategoryWork},
			{MatchDomain, "linear.app", CategoryWork},
			{MatchDomain, "todoist.com", CategoryWork},
			{MatchDomain, "gmail.com", CategoryWork},
			{MatchDomain, "outlook.com", CategoryWork},
			{MatchDomain, "slack.com", CategoryWork},
			{MatchDomain, "zoom.us", CategoryWork},
			{MatchDomain, "twitter.com", CategorySocial},
			{MatchDomain, "x.com", CategorySocial},
			{MatchDomain, "facebook.com", CategorySocial},
			{MatchDomain, "instagram.com", CategorySocial},
			{MatchDomain, "reddit.com", CategorySocial},
			{MatchDomain, "tiktok.com", CategorySocial},
			{MatchDomain, "linkedin.com", CategorySocial},
			{MatchDomain, "news.", CategoryNews},
			{MatchDomain, "cnn.com", CategoryNews},
			{MatchDomain, "bbc.com", CategoryNews},
			{MatchDomain, "nytimes.com", CategoryNews},
			{MatchDomain, "techcrunch.com", CategoryNews},
			{MatchDomain, "ycombinator.com", CategoryNews},
			{MatchDomain, "youtube.com", CategoryEntertainment},
			{MatchDomain, "netflix.com", CategoryEntertainment},
			{MatchDomain, "twitch.tv", CategoryEntertainment},
			{MatchDomain, "spotify.com", CategoryEntertainment},
			{MatchDomain, "hulu.com", CategoryEntertainment},
			{MatchDomain, "steampowered.com", CategoryGaming},
			{MatchDomain, "itch.io", CategoryGaming},
			{MatchDomain, "epicgames.com", CategoryGaming},
			{MatchDomain, "amazon.com", CategoryShopping},
			{MatchDomain, "ebay.com", CategoryShopping},
			{MatchDomain, "etsy.com", CategoryShopping},
			{MatchDomain, "target.com", CategoryShopping},
			{MatchDomain, "walmart.com", CategoryShopping},
		},
		Keywords: []Rule{
			{MatchKeyword, "pull request", CategoryCoding},
			{MatchKeyword, "repository", CategoryCoding},
			{MatchKeyword, "commit", CategoryCoding},
			{MatchKeyword, "documentation", CategoryLearning},
			{MatchKeyword, "tutorial", CategoryLearning},
			{MatchKeyword, "course", CategoryLearning},
			{MatchKeyword, "wireframe", CategoryDesigning},
			{MatchKeyword, "meeting", CategoryWork},
			{MatchKeyword, "headlines", CategoryNews},
			{MatchKeyword, "breaking news", CategoryNews},
			{MatchKeyword, "episode", CategoryEntertainment},
			{MatchKeyword, "checkout", CategoryShopping},
			{MatchKeyword, "add to cart", CategoryShopping},
		},
		Effects: DefaultEffects(),
	}
}

// Classify turns a raw signal into a category and display state. It never
// fails: malformed URLs degrade to CategoryOther and unknown applications to
// CategoryIdle.
func (rs Ruleset) Classify(sig Signal, health float64) Classification {
	app := strings.ToLower(strings.TrimSpace(sig.AppName))

	for _, rule := range rs.Apps {
		if rule.Pattern != "" && strings.Contains(app, rule.Pattern) {
			return Classification{Category: rule.Category, State: DeriveState(rule.Category, false, health)}
		}
	}

	if rs.isBrowser(app) {
		return rs.classifyBrowsing(sig, health)
	}

	return Classification{Category: CategoryIdle, State: DeriveState(CategoryIdle, false, health)}
}

func (rs Ruleset) isBrowser(app string) bool {
	for _, name := range rs.Browsers {
		if name != "" && strings.Contains(app, name) {
			return true
		}
	}
	return false
}

func (rs Ruleset) classifyBrowsing(sig Signal, health float64) Classification {
	raw := strings.ToLower(strings.TrimSpace(sig.URL))
	if raw == "" {
		return Classification{
			Category: CategoryOther,
			State:    DeriveState(CategoryOther, true, health),
			Browsing: true,
		}
	}

	host := hostOf(raw)
	haystack := raw + " " + strings.ToLower(sig.Title)
	category := rs.browsingCategory(host, haystack)
	return Classification{
		Category: category,
		State:    DeriveState(category, true, health),
		Browsing: true,
		Domain:   host,
	}
}

func (rs Ruleset) browsingCategory(host, haystack string) Category {
	if host != "" {
		for _, rule := range rs.Overrides {
			if rule.Pattern != "" && strings.Contains(host, strings.ToLower(rule.Pattern)) {
				return rule.Category
			}
		}
		for _, rule := range rs.Domains {
			if strings.Contains(host, rule.Pattern) {
				return rule.Category
			}
		}
	}
	for _, rule := range rs.Keywords {
		if strings.Contains(haystack, rule.Pattern) {
			return rule.Category
		}
	}
	// Login walls are almost always work; institutional domains lean learning.
	for _, term := range []string{"login", "signin", "auth"} {
		if strings.Contains(haystack, term) {
			return CategoryWork
		}
	}
	if strings.HasSuffix(host, ".gov") || strings.HasSuffix(host, ".edu") {
		return CategoryLearning
	}
	return CategoryOther
}

func hostOf(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := parsed.Host
	if host == "" {
		// Bare "example.com/path" signals from providers that drop the scheme.
		host, _, _ = strings.Cut(raw, "/")
		if strings.ContainsAny(host, " \t") {
			return ""
		}
	}
	host, _, _ = strings.Cut(host, ":")
	return strings.TrimPrefix(host, "www.")
}
