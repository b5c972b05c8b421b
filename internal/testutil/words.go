package testutil

// EnglishWords returns a word pool large enough to deal a board plus a full
// batch of bot clue candidates
func EnglishWords() []string {
	return []string{
		"apple", "arrow", "badge", "beach", "berry", "blade", "block", "board",
		"brain", "bread", "brick", "bridge", "brush", "cabin", "candle", "canyon",
		"castle", "chain", "chair", "chalk", "cherry", "cliff", "cloud", "clover",
		"coast", "comet", "coral", "crane", "crown", "dance", "diamond", "dragon",
		"dream", "eagle", "earth", "ember", "fence", "field", "flame", "forest",
		"frost", "garden", "giant", "glass", "globe", "grape", "hammer", "harbor",
		"heart", "honey", "horse", "island", "ivory", "jungle", "kite", "knight",
		"ladder", "lantern", "lemon", "light", "lion", "maple", "marble", "meadow",
		"mirror", "mountain", "needle", "ocean", "orange", "palace", "pearl", "piano",
		"pillar", "planet", "quartz", "raven", "river", "rocket", "saddle", "shadow",
		"shield", "silver", "spider", "spring", "stone", "storm", "sugar", "temple",
		"thunder", "tiger", "tower", "treasure", "valley", "violet", "wagon", "whale",
		"window", "winter", "wizard", "zebra",
	}
}

// RussianWords returns a Cyrillic pool big enough for one board
func RussianWords() []string {
	return []string{
		"арбуз", "башня", "берег", "ветер", "волна", "гора", "город", "дерево",
		"дождь", "дорога", "дракон", "жемчуг", "замок", "звезда", "зима", "игла",
		"камень", "книга", "корабль", "король", "лампа", "лев", "лес", "луна",
		"мост", "море", "небо", "огонь", "океан", "орел", "остров", "песок",
		"поле", "птица", "река", "рыцарь", "сад", "снег", "солнце", "тигр",
		"тень", "утро", "цветок", "час", "шторм", "яблоко",
	}
}
