package viewmodel

// PetLabel returns the card title for pet. Unknown pets get the Dogs blurb.
func PetLabel(pet string) string {
	switch pet {
	case "Cats":
		return pet + " 🐱 loves you dearly deep inside"
	case "Birds":
		return pet + " 🐦 sings and sometimes tells jokes!"
	case "Fishes":
		return pet + " 🐟 dances in your aquarium"
	case "Turtles":
		return pet + " 🐢 chills so hard it goes missing without moving"
	default:
		return pet + " 🐶 Your best friend"
	}
}
