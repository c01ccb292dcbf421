package subdomain

import (
	"math/rand/v2"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var namePattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?$`)

var adjectives = []string{
	"amber", "bold", "brave", "bright", "calm", "clever", "cosmic", "crisp",
	"eager", "fancy", "gentle", "golden", "happy", "jolly", "lucky", "mellow",
	"misty", "nimble", "quiet", "rapid", "rustic", "silent", "sunny", "swift",
	"tidy", "vivid", "witty", "zesty",
}

var nouns = []string{
	"anchor", "badger", "beacon", "breeze", "canyon", "comet", "falcon", "fern",
	"forest", "harbor", "island", "lagoon", "meadow", "nebula", "orbit", "otter",
	"panda", "pebble", "pine", "river", "rocket", "summit", "tiger", "valley",
	"willow", "zephyr",
}

// Normalize lowercases and trims a user-supplied name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Valid reports whether name is a usable DNS label.
func Valid(name string) bool {
	return namePattern.MatchString(name)
}

// Generate returns a random name like "swift-otter-3fa2".
func Generate() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:4]
	return adjectives[rand.IntN(len(adjectives))] + "-" + nouns[rand.IntN(len(nouns))] + "-" + suffix
}
