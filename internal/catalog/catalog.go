package catalog

import (
	"fmt"
	"strings"
)

type Language string

const (
	French  Language = "fr"
	English Language = "en"
)

// MessageParams carries every value the body templates can reference.
// Assembled fresh per notification, never persisted.
type MessageParams struct {
	CustomerName  string
	OrderNumber   string
	VehicleName   string
	DocumentNames []string
	DocumentURLs  []string
	DashboardURL  string
	ETA           string
}

type localized struct {
	Title      string
	Body       func(p MessageParams) string
	ButtonText string
}

// StatusMessageConfig is one immutable catalog entry per order status.
type StatusMessageConfig struct {
	Status           string
	Emoji            string
	IncludeDocuments bool
	FR               localized
	EN               localized
}

// StatusMessage is the resolved, language-specific content for one status.
type StatusMessage struct {
	Title      string
	Message    string
	ButtonText string
	Emoji      string
}

// documentList renders the bullet list appended when a status carries documents.
func documentList(names []string, lang Language) string {
	if len(names) == 0 {
		return ""
	}
	var b strings.Builder
	if lang == English {
		b.WriteString("\n\n📎 Attached documents:")
	} else {
		b.WriteString("\n\n📎 Documents joints :")
	}
	for _, name := range names {
		b.WriteString("\n• ")
		b.WriteString(name)
	}
	return b.String()
}

func etaLine(eta string, lang Language) string {
	if eta == "" {
		return ""
	}
	if lang == English {
		return fmt.Sprintf("\n\n🗓 Estimated arrival: %s", eta)
	}
	return fmt.Sprintf("\n\n🗓 Arrivée estimée : %s", eta)
}

var statusMessages = map[string]StatusMessageConfig{
	"order_created": {
		Status: "order_created",
		Emoji:  "📝",
		FR: localized{
			Title: "Commande enregistrée",
			Body: func(p MessageParams) string {
				return fmt.Sprintf("Bonjour %s,\n\nVotre commande %s pour le véhicule %s a bien été enregistrée. Notre équipe vous recontactera très vite pour la suite.",
					p.CustomerName, p.OrderNumber, p.VehicleName)
			},
			ButtonText: "Suivre ma commande",
		},
		EN: localized{
			Title: "Order registered",
			Body: func(p MessageParams) string {
				return fmt.Sprintf("Hello %s,\n\nYour order %s for the vehicle %s has been registered. Our team will get back to you shortly with the next steps.",
					p.CustomerName, p.OrderNumber, p.VehicleName)
			},
			ButtonText: "Track my order",
		},
	},
	"deposit_paid": {
		Status: "deposit_paid",
		Emoji:  "💰",
		FR: localized{
			Title: "Acompte reçu",
			Body: func(p MessageParams) string {
				return fmt.Sprintf("Bonjour %s,\n\nNous confirmons la réception de votre acompte pour la commande %s (%s). La recherche de votre véhicule démarre dès maintenant.",
					p.CustomerName, p.OrderNumber, p.VehicleName)
			},
			ButtonText: "Voir ma commande",
		},
		EN: localized{
			Title: "Deposit received",
			Body: func(p MessageParams) string {
				return fmt.Sprintf("Hello %s,\n\nWe confirm receipt of your deposit for order %s (%s). The search for your vehicle starts right away.",
					p.CustomerName, p.OrderNumber, p.VehicleName)
			},
			ButtonText: "View my order",
		},
	},
	"vehicle_sourcing": {
		Status: "vehicle_sourcing",
		Emoji:  "🔍",
		FR: localized{
			Title: "Recherche en cours",
			Body: func(p MessageParams) string {
				return fmt.Sprintf("Bonjour %s,\n\nNos partenaires recherchent actuellement le véhicule %s correspondant à votre commande %s. Nous vous préviendrons dès qu'une offre sera trouvée.",
					p.CustomerName, p.VehicleName, p.OrderNumber)
			},
			ButtonText: "Suivre ma commande",
		},
		EN: localized{
			Title: "Sourcing in progress",
			Body: func(p MessageParams) string {
				return fmt.Sprintf("Hello %s,\n\nOur partners are currently sourcing the vehicle %s for your order %s. We will let you know as soon as an offer is found.",
					p.CustomerName, p.VehicleName, p.OrderNumber)
			},
			ButtonText: "Track my order",
		},
	},
	"vehicle_found": {
		Status:           "vehicle_found",
		Emoji:            "🚗",
		IncludeDocuments: true,
		FR: localized{
			Title: "Véhicule trouvé",
			Body: func(p MessageParams) string {
				return fmt.Sprintf("Bonne nouvelle %s !\n\nNous avons trouvé un véhicule %s correspondant à votre commande %s. Consultez les photos et détails ci-dessous.%s",
					p.CustomerName, p.VehicleName, p.OrderNumber, documentList(p.DocumentNames, French))
			},
			ButtonText: "Voir les détails",
		},
		EN: localized{
			Title: "Vehicle found",
			Body: func(p MessageParams) string {
				return fmt.Sprintf("Good news %s!\n\nWe found a %s matching your order %s. Check out the photos and details below.%s",
					p.CustomerName, p.VehicleName, p.OrderNumber, documentList(p.DocumentNames, English))
			},
			ButtonText: "See details",
		},
	},
	"vehicle_locked": {
		Status:           "vehicle_locked",
		Emoji:            "🔒",
		IncludeDocuments: true,
		FR: localized{
			Title: "Véhicule réservé",
			Body: func(p MessageParams) string {
				return fmt.Sprintf("Bonjour %s,\n\nLe véhicule %s de votre commande %s est désormais réservé pour vous. Les documents de réservation sont disponibles.%s",
					p.CustomerName, p.VehicleName, p.OrderNumber, documentList(p.DocumentNames, French))
			},
			ButtonText: "Voir ma commande",
		},
		EN: localized{
			Title: "Vehicle secured",
			Body: func(p MessageParams) string {
				return fmt.Sprintf("Hello %s,\n\nThe %s for your order %s is now secured for you. The reservation documents are available.%s",
					p.CustomerName, p.VehicleName, p.OrderNumber, documentList(p.DocumentNames, English))
			},
			ButtonText: "View my order",
		},
	},
	"full_payment_received": {
		Status: "full_payment_received",
		Emoji:  "✅",
		FR: localized{
			Title: "Paiement complet reçu",
			Body: func(p MessageParams) string {
				return fmt.Sprintf("Merci %s !\n\nNous avons bien reçu le paiement intégral de votre commande %s (%s). Nous préparons maintenant l'expédition.",
					p.CustomerName, p.OrderNumber, p.VehicleName)
			},
			ButtonText: "Suivre ma commande",
		},
		EN: localized{
			Title: "Full payment received",
			Body: func(p MessageParams) string {
				return fmt.Sprintf("Thank you %s!\n\nWe have received the full payment for your order %s (%s). We are now preparing the shipment.",
					p.CustomerName, p.OrderNumber, p.VehicleName)
			},
			ButtonText: "Track my order",
		},
	},
	"inspection_completed": {
		Status:           "inspection_completed",
		Emoji:            "🔧",
		IncludeDocuments: true,
		FR: localized{
			Title: "Inspection terminée",
			Body: func(p MessageParams) string {
				return fmt.Sprintf("Bonjour %s,\n\nL'inspection du véhicule %s (commande %s) est terminée. Le rapport d'inspection est joint à ce message.%s",
					p.CustomerName, p.VehicleName, p.OrderNumber, documentList(p.DocumentNames, French))
			},
			ButtonText: "Voir le rapport",
		},
		EN: localized{
			Title: "Inspection completed",
			Body: func(p MessageParams) string {
				return fmt.Sprintf("Hello %s,\n\nThe inspection of the %s (order %s) is complete. The inspection report is attached to this message.%s",
					p.CustomerName, p.VehicleName, p.OrderNumber, documentList(p.DocumentNames, English))
			},
			ButtonText: "View report",
		},
	},
	"shipping": {
		Status:           "shipping",
		Emoji:            "🚢",
		IncludeDocuments: true,
		FR: localized{
			Title: "Expédition en cours",
			Body: func(p MessageParams) string {
				return fmt.Sprintf("Bonjour %s,\n\nVotre véhicule %s (commande %s) a été chargé et quitte le port d'origine. Les documents d'expédition sont joints.%s%s",
					p.CustomerName, p.VehicleName, p.OrderNumber, etaLine(p.ETA, French), documentList(p.DocumentNames, French))
			},
			ButtonText: "Suivre l'expédition",
		},
		EN: localized{
			Title: "Shipping underway",
			Body: func(p MessageParams) string {
				return fmt.Sprintf("Hello %s,\n\nYour %s (order %s) has been loaded and is leaving the port of origin. The shipping documents are attached.%s%s",
					p.CustomerName, p.VehicleName, p.OrderNumber, etaLine(p.ETA, English), documentList(p.DocumentNames, English))
			},
			ButtonText: "Track shipment",
		},
	},
	"in_transit": {
		Status: "in_transit",
		Emoji:  "🌊",
		FR: localized{
			Title: "En mer",
			Body: func(p MessageParams) string {
				return fmt.Sprintf("Bonjour %s,\n\nVotre véhicule %s (commande %s) est actuellement en mer, en route vers Libreville.%s",
					p.CustomerName, p.VehicleName, p.OrderNumber, etaLine(p.ETA, French))
			},
			ButtonText: "Suivre ma commande",
		},
		EN: localized{
			Title: "At sea",
			Body: func(p MessageParams) string {
				return fmt.Sprintf("Hello %s,\n\nYour %s (order %s) is currently at sea, on its way to Libreville.%s",
					p.CustomerName, p.VehicleName, p.OrderNumber, etaLine(p.ETA, English))
			},
			ButtonText: "Track my order",
		},
	},
	"customs_clearance": {
		Status:           "customs_clearance",
		Emoji:            "🛃",
		IncludeDocuments: true,
		FR: localized{
			Title: "Dédouanement",
			Body: func(p MessageParams) string {
				return fmt.Sprintf("Bonjour %s,\n\nVotre véhicule %s (commande %s) est arrivé au port et les formalités de dédouanement sont en cours.%s",
					p.CustomerName, p.VehicleName, p.OrderNumber, documentList(p.DocumentNames, French))
			},
			ButtonText: "Voir ma commande",
		},
		EN: localized{
			Title: "Customs clearance",
			Body: func(p MessageParams) string {
				return fmt.Sprintf("Hello %s,\n\nYour %s (order %s) has arrived at the port and customs clearance is underway.%s",
					p.CustomerName, p.VehicleName, p.OrderNumber, documentList(p.DocumentNames, English))
			},
			ButtonText: "View my order",
		},
	},
	"arrived": {
		Status:           "arrived",
		Emoji:            "📍",
		IncludeDocuments: true,
		FR: localized{
			Title: "Véhicule arrivé",
			Body: func(p MessageParams) string {
				return fmt.Sprintf("Bonne nouvelle %s !\n\nVotre véhicule %s (commande %s) est dédouané et disponible. Nous vous contactons pour organiser la remise des clés.%s",
					p.CustomerName, p.VehicleName, p.OrderNumber, documentList(p.DocumentNames, French))
			},
			ButtonText: "Voir ma commande",
		},
		EN: localized{
			Title: "Vehicle arrived",
			Body: func(p MessageParams) string {
				return fmt.Sprintf("Good news %s!\n\nYour %s (order %s) has cleared customs and is available. We will contact you to arrange the handover.%s",
					p.CustomerName, p.VehicleName, p.OrderNumber, documentList(p.DocumentNames, English))
			},
			ButtonText: "View my order",
		},
	},
	"delivered": {
		Status: "delivered",
		Emoji:  "🎉",
		FR: localized{
			Title: "Véhicule livré",
			Body: func(p MessageParams) string {
				return fmt.Sprintf("Félicitations %s !\n\nVotre véhicule %s (commande %s) vous a été livré. Toute l'équipe vous souhaite une excellente route !",
					p.CustomerName, p.VehicleName, p.OrderNumber)
			},
			ButtonText: "Mon espace client",
		},
		EN: localized{
			Title: "Vehicle delivered",
			Body: func(p MessageParams) string {
				return fmt.Sprintf("Congratulations %s!\n\nYour %s (order %s) has been delivered. The whole team wishes you a great ride!",
					p.CustomerName, p.VehicleName, p.OrderNumber)
			},
			ButtonText: "My dashboard",
		},
	},
	"cancelled": {
		Status: "cancelled",
		Emoji:  "❌",
		FR: localized{
			Title: "Commande annulée",
			Body: func(p MessageParams) string {
				return fmt.Sprintf("Bonjour %s,\n\nVotre commande %s (%s) a été annulée. Si vous avez des questions, notre équipe reste à votre disposition.",
					p.CustomerName, p.OrderNumber, p.VehicleName)
			},
			ButtonText: "Nous contacter",
		},
		EN: localized{
			Title: "Order cancelled",
			Body: func(p MessageParams) string {
				return fmt.Sprintf("Hello %s,\n\nYour order %s (%s) has been cancelled. If you have any questions, our team remains at your disposal.",
					p.CustomerName, p.OrderNumber, p.VehicleName)
			},
			ButtonText: "Contact us",
		},
	},
}

// GetStatusMessageConfig looks up the catalog entry for a status.
func GetStatusMessageConfig(status string) (StatusMessageConfig, bool) {
	cfg, ok := statusMessages[status]
	return cfg, ok
}

// GetStatusMessage resolves the catalog entry for a status into
// language-specific content. Returns nil for an unrecognized status.
func GetStatusMessage(status string, params MessageParams, lang Language) *StatusMessage {
	cfg, ok := statusMessages[status]
	if !ok {
		return nil
	}
	loc := cfg.FR
	if lang == English {
		loc = cfg.EN
	}
	return &StatusMessage{
		Title:      loc.Title,
		Message:    loc.Body(params),
		ButtonText: loc.ButtonText,
		Emoji:      cfg.Emoji,
	}
}

// DocumentsAddedMessage is the template used when documents are attached to an
// order outside of a status change.
func DocumentsAddedMessage(params MessageParams, lang Language) StatusMessage {
	if lang == English {
		return StatusMessage{
			Title: "New documents available",
			Message: fmt.Sprintf("Hello %s,\n\nNew documents have been added to your order %s.%s",
				params.CustomerName, params.OrderNumber, documentList(params.DocumentNames, English)),
			ButtonText: "View documents",
			Emoji:      "📄",
		}
	}
	return StatusMessage{
		Title: "Nouveaux documents disponibles",
		Message: fmt.Sprintf("Bonjour %s,\n\nDe nouveaux documents ont été ajoutés à votre commande %s.%s",
			params.CustomerName, params.OrderNumber, documentList(params.DocumentNames, French)),
		ButtonText: "Voir les documents",
		Emoji:      "📄",
	}
}

// Statuses returns the known status keys. Order is not guaranteed.
func Statuses() []string {
	keys := make([]string, 0, len(statusMessages))
	for k := range statusMessages {
		keys = append(keys, k)
	}
	return keys
}
