package model

// PersonaPreset is a ready-made persona the app offers during setup.
type PersonaPreset struct {
	Name        string
	Color       PersonaColor
	Icon        PersonaIcon
	Description string
}

// PersonaPresets are the built-in persona templates.
var PersonaPresets = []PersonaPreset{
	{Name: "Personal", Color: ColorBlue, Icon: IconHouse, Description: "Everyday life"},
	{Name: "Work", Color: ColorGray, Icon: IconBriefcase, Description: "Career and projects"},
	{Name: "Travel", Color: ColorTeal, Icon: IconGlobe, Description: "Trips and places"},
	{Name: "Health", Color: ColorGreen, Icon: IconLeaf, Description: "Fitness and wellbeing"},
	{Name: "Creative", Color: ColorPurple, Icon: IconMusic, Description: "Projects and ideas"},
}

// PresetByName returns the preset with the given name, or nil.
func PresetByName(name string) *PersonaPreset {
	for i := range PersonaPresets {
		if PersonaPresets[i].Name == name {
			return &PersonaPresets[i]
		}
	}
	return nil
}
