package handlers

import (
	"html"

	"github.com/gofiber/fiber/v2"
)

type LegalHandler struct {
	supportEmail string
}

func NewLegalHandler(supportEmail string) *LegalHandler {
	return &LegalHandler{supportEmail: supportEmail}
}

const legalHead = `<!DOCTYPE html>
<html lang="fr"><head><meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<style>body{font-family:-apple-system,BlinkMacSystemFont,sans-serif;max-width:800px;margin:0 auto;padding:20px;color:#333}h1{color:#1a1a1a}h2{color:#444;margin-top:30px}</style>`

func (h *LegalHandler) PrivacyPolicy(c *fiber.Ctx) error {
	contact := html.EscapeString(h.supportEmail)
	return c.Type("html").SendString(legalHead + `
<title>Politique de confidentialité - Linkhood</title>
</head><body>
<h1>Politique de confidentialité</h1>
<p>Dernière mise à jour : octobre 2026</p>
<h2>Données collectées</h2>
<p>Linkhood conserve votre adresse e-mail, votre nom, et si vous les renseignez votre numéro de téléphone et votre photo de profil. Les signalements, événements et messages que vous publiez sont associés à votre compte.</p>
<h2>Localisation</h2>
<p>Votre position n’est enregistrée que lorsque vous l’autorisez, et seulement après un déplacement d’au moins 10 mètres. Elle sert à centrer la carte du quartier.</p>
<h2>Utilisation</h2>
<p>Vos données servent uniquement au fonctionnement de Linkhood : affichage de la carte, du forum, et envoi des e-mails liés à vos signalements et événements. Vous pouvez désactiver ces e-mails dans les paramètres.</p>
<h2>Suppression du compte</h2>
<p>Vous pouvez supprimer votre compte à tout moment. Vos informations personnelles sont alors effacées et vos publications apparaissent comme « Anonyme ».</p>
<h2>Contact</h2>
<p>Pour toute question : ` + contact + `</p>
</body></html>`)
}

func (h *LegalHandler) TermsOfService(c *fiber.Ctx) error {
	contact := html.EscapeString(h.supportEmail)
	return c.Type("html").SendString(legalHead + `
<title>Conditions d’utilisation - Linkhood</title>
</head><body>
<h1>Conditions d’utilisation</h1>
<p>Dernière mise à jour : octobre 2026</p>
<h2>Acceptation</h2>
<p>En utilisant Linkhood, vous acceptez ces conditions.</p>
<h2>Contenus</h2>
<p>Vous vous engagez à ne publier ni propos injurieux, ni contenu illégal, ni publicité. Les administrateurs peuvent masquer ou supprimer tout contenu qui ne respecte pas ces règles.</p>
<h2>Signalements</h2>
<p>Les signalements doivent concerner la zone du quartier et décrire un problème réel. Leur statut est mis à jour par les administrateurs.</p>
<h2>Résiliation</h2>
<p>Un compte qui ne respecte pas ces conditions peut être suspendu.</p>
<h2>Contact</h2>
<p>Pour toute question : ` + contact + `</p>
</body></html>`)
}
