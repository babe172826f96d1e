package handlers

import "github.com/gofiber/fiber/v2"

type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type HelpResponse struct {
	Title        string     `json:"title"`
	FAQ          []FAQEntry `json:"faq"`
	SupportEmail string     `json:"support_email,omitempty"`
}

var FAQ = []FAQEntry{
	{
		Question: "Comment signaler un problème ?",
		Answer:   "Allez dans l’onglet \"Signalements\", sélectionnez un emplacement sur la carte, et remplissez le formulaire.",
	},
	{
		Question: "Comment poster un message dans le forum ?",
		Answer:   "Allez dans l’onglet \"Communauté\", et utilisez le formulaire pour poster un message.",
	},
	{
		Question: "Comment modifier mon profil ?",
		Answer:   "Allez dans l’onglet \"Menu\", cliquez sur \"Profil\", et mettez à jour vos informations.",
	},
}

type HelpHandler struct {
	supportEmail string
}

func NewHelpHandler(supportEmail string) *HelpHandler {
	return &HelpHandler{supportEmail: supportEmail}
}

func (h *HelpHandler) Get(c *fiber.Ctx) error {
	return c.JSON(HelpResponse{
		Title:        "Foire aux questions (FAQ)",
		FAQ:          FAQ,
		SupportEmail: h.supportEmail,
	})
}
