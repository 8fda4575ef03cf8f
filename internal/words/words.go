// Package words holds the tiered word lists and picks candidate words
// for a drawer to choose from.
package words

import "math/rand"

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

type Word struct {
	Text       string     `json:"text"`
	Difficulty Difficulty `json:"difficulty"`
	Points     int        `json:"points"`
}

var tierPoints = map[Difficulty]int{
	Easy:   10,
	Medium: 50,
	Hard:   100,
}

var tiers = map[Difficulty][]string{
	Easy: {
		"cat", "dog", "sun", "moon", "star", "tree", "house", "car", "boat", "fish",
		"bird", "ball", "book", "chair", "table", "door", "window", "flower", "apple", "banana",
		"hat", "shoe", "cup", "plate", "key", "watch", "phone", "lamp", "bed", "clock",
	},
	Medium: {
		"elephant", "butterfly", "mountain", "rainbow", "castle", "dragon", "guitar", "umbrella",
		"lighthouse", "volcano", "penguin", "kangaroo", "dinosaur", "astronaut", "telescope",
		"pyramid", "waterfall", "submarine", "helicopter", "campfire", "snowman",
		"surfboard", "skateboard", "basketball", "playground", "television", "refrigerator",
	},
	Hard: {
		"architecture", "kaleidoscope", "metamorphosis", "photosynthesis", "constellation",
		"expedition", "silhouette", "equilibrium", "renaissance", "phenomenon",
		"infrastructure", "synchronization", "transparency", "biodiversity", "contemplation",
		"acceleration", "cryptocurrency", "deforestation", "globalization", "sustainability",
	},
}

// Choices returns one candidate word per difficulty tier, easy first.
// Words present in used are skipped so a game never offers the same word
// twice; a fully exhausted tier falls back to reuse.
func Choices(used map[string]struct{}) []Word {
	choices := make([]Word, 0, 3)
	for _, tier := range []Difficulty{Easy, Medium, Hard} {
		choices = append(choices, Word{
			Text:       pick(tiers[tier], used),
			Difficulty: tier,
			Points:     tierPoints[tier],
		})
	}
	return choices
}

func pick(list []string, used map[string]struct{}) string {
	fresh := make([]string, 0, len(list))
	for _, w := range list {
		if _, ok := used[w]; !ok {
			fresh = append(fresh, w)
		}
	}
	if len(fresh) == 0 {
		fresh = list
	}
	return fresh[rand.Intn(len(fresh))]
}

// Points reports the base score for a difficulty tier.
func Points(d Difficulty) int {
	return tierPoints[d]
}
