package species

// Default is the built-in catalog used when no external source is configured.
func Default() *Catalog {
	return NewCatalog(map[string]string{
		"AH":  "Ash",
		"ALD": "Alder",
		"BE":  "Beech",
		"BI":  "Birch",
		"CAR": "Cherry",
		"CP":  "Corsican pine",
		"DF":  "Douglas fir",
		"EL":  "European larch",
		"HAZ": "Hazel",
		"HBM": "Hornbeam",
		"HL":  "Hybrid larch",
		"JL":  "Japanese larch",
		"LI":  "Lime",
		"NS":  "Norway spruce",
		"OK":  "Oak",
		"POK": "Pedunculate oak",
		"ROW": "Rowan",
		"SC":  "Sweet chestnut",
		"SOK": "Sessile oak",
		"SP":  "Scots pine",
		"SS":  "Sitka spruce",
		"SY":  "Sycamore",
		"WCH": "Wild cherry",
		"WEM": "Wych elm",
		"WH":  "Western hemlock",
		"WRC": "Western red cedar",
		"XB":  "Mixed broadleaves",
		"XC":  "Mixed conifers",
	})
}
