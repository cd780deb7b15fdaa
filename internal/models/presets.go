package models

type PresetPrompt struct {
	Title  string `json:"title"`
	Prompt string `json:"prompt"`
}

// PresetPrompts is the built-in prompt catalog shown alongside user-saved prompts.
var PresetPrompts = []PresetPrompt{
	{
		Title:  "Cyberpunk Cat",
		Prompt: "Epic cinematic slow-motion shot of a cat in a superhero cape, skateboarding through a futuristic, neon-lit city at night, viral video style, 8K, hyper-detailed.",
	},
	{
		Title:  "Ancient Library",
		Prompt: "A vast, ancient library with endless shelves of glowing books, a wise old owl wearing spectacles perches on a stack of tomes, cinematic, volumetric lighting, 8K, hyperrealistic.",
	},
	{
		Title:  "Space Jellyfish",
		Prompt: "Bioluminescent jellyfish gracefully floating through the nebulae of deep space, planets and stars in the background, ethereal, cosmic, vibrant colors, slow-motion.",
	},
	{
		Title:  "Steampunk Train",
		Prompt: "A magnificent steampunk train with brass pipes and glowing gears chugging through a dramatic mountain pass at sunset, smoke billowing from its chimney, detailed, adventure, cinematic.",
	},
	{
		Title:  "Enchanted Forest",
		Prompt: "A mystical forest clearing at dawn, where sunbeams pierce through the canopy to illuminate a sparkling waterfall and magical creatures drinking from the stream, fantasy, serene, detailed.",
	},
	{
		Title:  "Gourmet Burger",
		Prompt: "Extreme close-up, super slow-motion shot of a juicy gourmet burger being assembled. A fresh brioche bun lands on top, sesame seeds flying, food commercial style, macro lens, high detail.",
	},
	{
		Title:  "Viking Ship",
		Prompt: "A fleet of Viking longships with dragon figureheads sailing through a stormy sea, lightning cracks across the dark sky, towering waves crash against the ships, epic, dramatic, cinematic.",
	},
	{
		Title:  "Robot Gardener",
		Prompt: "A friendly, retro-style robot meticulously tending to a vibrant rooftop garden in a futuristic city, skyscrapers in the background, peaceful, high-detail, solarpunk aesthetic.",
	},
	{
		Title:  "Claymation Monsters",
		Prompt: "A whimsical scene of colorful, friendly claymation monsters having a tea party in a quirky, handmade world. Stop-motion animation style, playful, charming, textured.",
	},
	{
		Title:  "Desert Race",
		Prompt: "A high-speed drone shot following a futuristic hovercraft racing across a vast red desert, kicking up dust plumes, inspired by Mad Max and Star Wars, dynamic, action-packed.",
	},
}
