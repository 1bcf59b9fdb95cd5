package catalog

const (
	standardQuality     = "4k resolution, photorealistic, high detail, professional video quality"
	standardConsistency = "consistent facial features throughout, same person, same appearance"
	warmCinematicLight  = "cinematic lighting with soft key light and subtle fill, warm color temperature"
)

var defaultPersonas = []Persona{
	{
		Key:         "indonesian_woman_fair",
		Name:        "Indonesian Woman (Fair)",
		Subject:     "Young Indonesian woman, fair skin (kulit sawo matang cerah), natural black hair, oval face with soft features",
		Lighting:    warmCinematicLight,
		Quality:     standardQuality,
		Consistency: standardConsistency,
	},
	{
		Key:         "indonesian_woman_medium",
		Name:        "Indonesian Woman (Medium)",
		Subject:     "Young Indonesian woman, medium tan skin (kulit sawo matang), natural black hair, round face with warm expression",
		Lighting:    "natural indoor lighting with soft shadows, neutral color temperature",
		Quality:     standardQuality,
		Consistency: standardConsistency,
	},
	{
		Key:         "indonesian_man_fair",
		Name:        "Indonesian Man (Fair)",
		Subject:     "Young Indonesian man, fair skin, short neat black hair, clean-shaven, friendly expression",
		Lighting:    warmCinematicLight,
		Quality:     standardQuality,
		Consistency: standardConsistency,
	},
}

var defaultBackgrounds = []Background{
	{Key: "modern_living_room", Name: "Modern Living Room", Description: "modern Indonesian living room, minimalist decor, soft natural daylight from window, clean white walls with subtle warm accents, comfortable sofa visible in background"},
	{Key: "minimalist_kitchen", Name: "Minimalist Kitchen", Description: "bright minimalist kitchen, white cabinets with wood accents, natural light from window, clean marble countertop, indoor plants visible"},
	{Key: "modern_bedroom", Name: "Modern Bedroom", Description: "cozy modern bedroom, soft morning light through sheer curtains, neutral earth tones, comfortable bedding, minimalist nightstand"},
	{Key: "studio_white", Name: "White Studio", Description: "professional studio setup, clean white background, ring light illumination creating soft even lighting, subtle shadows"},
	{Key: "outdoor_garden", Name: "Outdoor Garden", Description: "lush Indonesian garden, tropical plants and flowers, golden hour sunlight filtering through leaves, natural bokeh background"},
}

var defaultNiches = []Niche{
	{
		Key:          "herbal",
		Name:         "Herbal & Skincare",
		ProductFocus: "natural organic product packaging, herbal ingredients visible, fresh and clean aesthetic",
		Expressions:  "healthy radiant skin, refreshed expression, genuine satisfaction, natural glow",
		Actions: []string{
			"holding product gently near face",
			"reading product label with interest",
			"applying product with gentle patting motion",
			"showing before/after skin texture",
		},
		Atmosphere:   "fresh, clean, natural, wellness-focused ambiance",
		ColorGrading: "natural green and earth tones, fresh and vibrant colors, clean whites",
	},
	{
		Key:          "fashion",
		Name:         "Fashion",
		ProductFocus: "detailed fabric texture, elegant stitching visible, premium material quality",
		Expressions:  "confident pose, elegant demeanor, fashionable attitude, subtle smile",
		Actions: []string{
			"fabric flowing with natural movement",
			"graceful walk showing outfit details",
			"turning to show garment from different angles",
			"adjusting clothing with elegant gesture",
		},
		Atmosphere:   "stylish, premium, aspirational fashion aesthetic",
		ColorGrading: "rich saturated colors, high contrast, fashion editorial look",
	},
	{
		Key:          "elektronik",
		Name:         "Electronics",
		ProductFocus: "sleek gadget design, screen illumination, premium build quality, modern technology",
		Expressions:  "focused attention, impressed reaction, tech-savvy confidence, genuine interest",
		Actions: []string{
			"unboxing with careful attention",
			"demonstrating key feature with finger gesture",
			"showing screen display to camera",
			"comparing size with hand for scale",
		},
		Atmosphere:   "modern, sleek, premium tech aesthetic",
		ColorGrading: "cool blue tones, high contrast, cinematic tech commercial look",
	},
}

var defaultScenes = []Scene{
	{
		Type:     SceneHook,
		Purpose:  "Grab attention in first 2 seconds",
		Duration: "4 seconds",
		Camera: CameraWork{
			Movement:    "static or subtle zoom in",
			Composition: "medium close-up, face clearly visible",
			Angle:       "eye-level, slightly elevated for flattering angle",
		},
		Actions: []string{
			"looking directly at camera with friendly smile",
			"holding product near face, making eye contact",
			"surprised/excited expression while revealing product",
		},
		Suffix: "engaging with viewer, direct eye contact, inviting expression",
	},
	{
		Type:     SceneBenefit,
		Purpose:  "Show product benefits",
		Duration: "4 seconds",
		Camera: CameraWork{
			Movement:    "slow pan right or left",
			Composition: "medium shot, product clearly visible",
			Angle:       "eye-level",
		},
		Actions: []string{
			"demonstrating product feature with hands",
			"pointing to product detail while explaining",
			"showing product from different angle",
		},
		Suffix: "demonstrating benefit, focused on product, natural presentation",
	},
	{
		Type:     SceneDemo,
		Purpose:  "Show product in use",
		Duration: "4 seconds",
		Camera: CameraWork{
			Movement:    "close-up with subtle follow focus",
			Composition: "close-up on product interaction",
			Angle:       "slightly overhead for clear view",
		},
		Actions: []string{
			"using product with natural movements",
			"showing application technique",
			"revealing product result",
		},
		Suffix: "product in action, detailed view, authentic usage demonstration",
	},
	{
		Type:     SceneCTA,
		Purpose:  "Call to action",
		Duration: "4 seconds",
		Camera: CameraWork{
			Movement:    "slow zoom in ending on face",
			Composition: "medium shot transitioning to close-up",
			Angle:       "eye-level, friendly perspective",
		},
		Actions: []string{
			"gesturing toward camera with inviting motion",
			"pointing down (toward link/bio)",
			"smiling warmly while holding product",
		},
		Suffix: "warm invitation, call to action gesture, friendly closing expression",
	},
}

var defaultStyles = []StylePreset{
	{
		Key:      "vlog",
		Name:     "Vlog",
		Camera:   "handheld slight natural shake, authentic vlog feel",
		Lighting: "natural ambient lighting, realistic indoor/outdoor light",
		Color:    "natural color grading, warm and inviting",
		Mood:     "casual, authentic, relatable content creator vibe",
	},
	{
		Key:      "studio",
		Name:     "Studio",
		Camera:   "locked tripod shot, smooth professional movement",
		Lighting: "professional ring light, even illumination, catch lights in eyes",
		Color:    "clean neutral color grading, slightly warm skin tones",
		Mood:     "professional, polished, brand commercial quality",
	},
	{
		Key:      "cinematic",
		Name:     "Cinematic",
		Camera:   "smooth dolly/gimbal movement, shallow depth of field",
		Lighting: "dramatic cinematic lighting, volumetric light effects, lens flare",
		Color:    "cinematic color grading, filmic look, rich shadows",
		Mood:     "premium, aspirational, high-end commercial",
	},
}

var builtin = New(defaultPersonas, defaultBackgrounds, defaultNiches, defaultScenes, defaultStyles)

// Default returns the built-in catalog.
func Default() *Catalog {
	return builtin
}
