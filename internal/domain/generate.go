package domain

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// idAlphabet is a 64-entry table so a random byte masked with 0x3f maps
// straight onto it. The '-' and '_' entries are skipped on draw, which
// keeps the produced IDs strictly alphanumeric while staying cheap.
const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-_"

var (
	adjectives = []string{
		"swift", "silent", "brave", "clever", "lazy", "fierce", "calm", "bold",
		"gentle", "wild", "cool", "chill", "fuzzy", "sharp", "smooth", "quick",
		"steady", "curious", "fearless", "mighty", "nimble", "playful", "quiet",
		"sneaky", "loyal", "proud", "witty", "eager", "lucky", "sly", "frosty",
		"sunny", "stormy", "shadowy", "bright", "ancient", "cosmic", "neon",
		"urban", "rogue",
	}

	animals = []string{
		"wolf", "fox", "panda", "tiger", "lion", "eagle", "hawk", "owl", "bear",
		"otter", "panther", "leopard", "cheetah", "lynx", "jaguar", "dragon",
		"phoenix", "falcon", "raven", "crow", "shark", "orca", "dolphin",
		"whale", "seal", "cobra", "viper", "python", "gecko", "iguana", "bison",
		"buffalo", "elk", "moose", "deer", "rabbit", "hare", "badger", "ferret",
		"weasel",
	}
)

// GenerateID mints a crypto-random identifier of the given length. Room
// IDs and participant tokens both come from here.
func GenerateID(size int) (string, error) {
	var sb strings.Builder
	sb.Grow(size)

	buf := make([]byte, size)

	for sb.Len() < size {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}

		for _, b := range buf {
			if sb.Len() == size {
				break
			}
			c := idAlphabet[b&63]
			if c != '-' && c != '_' {
				sb.WriteByte(c)
			}
		}
	}

	return sb.String(), nil
}

// GenerateUsername produces a throwaway display name like
// "frosty-otter-x7Kq2". Display names are never identities; the token is.
func GenerateUsername() (string, error) {
	adj, err := randIndex(len(adjectives))
	if err != nil {
		return "", err
	}
	animal, err := randIndex(len(animals))
	if err != nil {
		return "", err
	}
	suffix, err := GenerateID(5)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%s-%s", adjectives[adj], animals[animal], suffix), nil
}

func randIndex(max int) (int, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	n := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	return int(n % uint32(max)), nil
}
