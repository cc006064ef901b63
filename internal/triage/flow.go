package triage

import (
	"fmt"
	"strings"

	"mackflow-bridge/internal/models"
)

// Greeting doubles as the ASK_NAME prompt: it is returned for any empty
// message while the name is still unknown.
const Greeting = "Olá! Qual seu nome? 🙂"

// EmergencyReply is sent whenever a message matches the accident pattern,
// regardless of the current step.
const EmergencyReply = "Sinto muito! Se houver vítimas, ligue 190/193 agora. Posso ajudar com algo mais? 🚨"

const (
	askPlateReply     = "Qual a placa do veículo? 🚗"
	askLocationReply  = "Onde você está? (bairro e cidade ou envie localização) 📍"
	askServiceReply   = "Qual o tipo de serviço? (Guincho / Pane elétrica / Pneu / Chaveiro / Mecânico) 🔧"
	serviceRetryReply = "Por favor, escolha: Guincho / Pane elétrica / Pneu / Chaveiro / Mecânico. 🔧"
	askFinancialReply = "Para teste do sistema: responda 1 para ADIMPLENTE ✅ ou 2 para INADIMPLENTE ❌."
	closingReply      = "Posso ajudar em algo mais? 🙂"
)

// Advance applies one inbound message to the session, mutating it in place,
// and returns the reply to send back on the chat channel. Emergency messages
// are answered immediately and never change the step. Empty input at a
// question step re-prompts without advancing.
func Advance(sess *models.ConversationSession, message string) string {
	text := strings.TrimSpace(message)

	if IsEmergency(text) {
		return EmergencyReply
	}

	switch sess.Step {
	case models.StepAskName:
		if text == "" {
			return Greeting
		}
		sess.Name = text
		sess.Step = models.StepAskPlate
		return fmt.Sprintf("Obrigado, %s! Qual a placa do veículo? 🚗", sess.Name)

	case models.StepAskPlate:
		if text == "" {
			return askPlateReply
		}
		sess.Plate = strings.ToUpper(text)
		sess.Step = models.StepAskLocation
		return askLocationReply

	case models.StepAskLocation:
		if text == "" {
			return askLocationReply
		}
		sess.Location = text
		sess.Step = models.StepAskService
		return askServiceReply

	case models.StepAskService:
		label, ok := ResolveService(text)
		if !ok {
			return serviceRetryReply
		}
		sess.ServiceType = label
		sess.Step = models.StepAskFinancial
		return askFinancialReply

	case models.StepAskFinancial:
		switch text {
		case "1":
			sess.FinancialStatus = models.FinancialFunded
			sess.Step = models.StepReadyToOpenOrder
			return fmt.Sprintf("Perfeito! Vou abrir a OS e em instantes envio o protocolo. %s\n[STATUS_FINANCEIRO=ADIMPLENTE]", Confirmation(sess))
		case "2":
			sess.FinancialStatus = models.FinancialNotFunded
			sess.Step = models.StepDone
			return fmt.Sprintf("Existe uma pendência e a OS não pode ser aberta agora. Quer falar com um atendente? %s\n[STATUS_FINANCEIRO=INADIMPLENTE]", Confirmation(sess))
		default:
			return askFinancialReply
		}

	default:
		// READY_TO_OPEN_ORDER and DONE collect nothing further.
		return closingReply
	}
}

// Confirmation renders the collected data summary appended to the financial
// check replies. Unset fields render as "-".
func Confirmation(sess *models.ConversationSession) string {
	return fmt.Sprintf("Confere os dados: Nome %s; Placa %s; Local %s; Serviço %s.",
		orDash(sess.Name), orDash(sess.Plate), orDash(sess.Location), orDash(sess.ServiceType))
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
