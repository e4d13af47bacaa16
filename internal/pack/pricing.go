package pack

// Volume discount tiers applied when a pack is purchased. The discounted
// total is frozen into the record; later tier changes never reprice sold packs.
func DiscountPercent(sessionCount int) float64 {
	switch {
	case sessionCount >= 20:
		return 20
	case sessionCount >= 10:
		return 15
	case sessionCount >= 5:
		return 10
	default:
		return 0
	}
}

func TotalPrice(sessionCount int, pricePerSession float64) float64 {
	gross := float64(sessionCount) * pricePerSession
	return gross * (1 - DiscountPercent(sessionCount)/100)
}
