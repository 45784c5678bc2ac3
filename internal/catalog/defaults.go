package catalog

// DefaultConfig is the counter's stock menu.
func DefaultConfig() Config {
	return Config{
		Items: []Item{
			{ID: "ice-cream", Name: "Ice Cream", Category: "Main"},
			{ID: "fruits", Name: "Fruits", Category: "Main"},
			{ID: "beeda", Name: "Beeda", Category: "Main"},
			{ID: "welcome-drinks", Name: "Welcome Drinks", Category: "Main"},
			{ID: "popcorn", Name: "Popcorn", Price: 20, Category: "Main"},
			{ID: "cotton-candy", Name: "Cotton Candy", Price: 20, Category: "Main"},
			{ID: "chocolate-fountain", Name: "Chocolate Fountain", Price: 100, Category: "Main"},
			{ID: "milk", Name: "Milk", Price: 28, Category: "Main"},
			{ID: "curd", Name: "Curd", Price: 30, Category: "Main"},
			{ID: "paneer", Name: "Paneer", Price: 100, Category: "Main"},
			{ID: "starters", Name: "Starters", Category: "Main"},
			{ID: "boy", Name: "Boy", Category: "Main"},
			{ID: "auto", Name: "Auto", Category: "Main"},
		},
		Pickers: []Picker{
			{ID: "flavor-selection", Item: "Ice Cream", Options: []Variant{
				{Name: "Vanilla", Price: 30},
				{Name: "Strawberry", Price: 35},
				{Name: "Butterscotch", Price: 40},
				{Name: "Pista", Price: 40},
				{Name: "American Nuts", Price: 50},
				{Name: "Kulfi Nuts", Price: 50},
				{Name: "Italian Delight", Price: 55},
				{Name: "Kaju Katli", Price: 60},
				{Name: "Gulkand", Price: 45},
				{Name: "Cassata", Price: 70},
			}},
			{ID: "fruit-selection", Item: "Fruits", Options: []Variant{
				{Name: "Mixing Fruits", Price: 40},
				{Name: "Separate Fruits", Price: 50},
			}},
			{ID: "beeda-selection", Item: "Beeda", Options: []Variant{
				{Name: "Sweet Beeda", Price: 15},
				{Name: "Sada Beeda", Price: 15},
			}},
			{ID: "drink-selection", Item: "Welcome Drinks", Options: []Variant{
				{Name: "Fruit Salad", Price: 30},
				{Name: "Rose Milk", Price: 30},
				{Name: "Watermelon Juice", Price: 30},
			}},
		},
	}
}
