// Package chat provides the AI recipe assistant relay. It converts UI
// conversation turns to provider messages, attaches the chef persona
// prompt, and streams the provider's output back without buffering or
// post-processing.
package chat

import (
	"context"
	"strings"

	"github.com/cocinadelpatito/v1/internal/ports/inbound"
	"github.com/cocinadelpatito/v1/internal/ports/outbound"
	"github.com/cocinadelpatito/v1/pkg/errors"
	"go.uber.org/zap"
)

// chefSystemPromptV1 is the fixed culinary-assistant persona. The model
// is instructed to gather constraints (ingredients, taste preference,
// time budget, servings) before producing a structured recipe.
const chefSystemPromptV1 = `Eres un chef profesional privado con 3 estrellas Michelin. Respondes siempre con brevedad, precisión y sin divagar. Tu rol es guiar al usuario para preparar la mejor receta posible según sus condiciones.

Antes de proponer cualquier receta, haz preguntas para recopilar:

- Ingredientes disponibles
- Preferencia de sabor: salado, dulce o agridulce
- Tiempo disponible para cocinar
- Número de personas

Una vez tengas esta información, entrega una receta adaptada con pasos claros, ordenados y detallados, manteniendo un tono profesional y conciso. La receta debe incluir una lista de "Ingredientes necesarios" con cantidades y una sección de "Pasos" numerados, cerrando con el tiempo total aproximado.

Ejemplo de salida esperada:

Usuario: Tengo pollo y arroz, para 3 personas, quiero salado y dispongo de 45 minutos.
Chef: ¿Qué otros ingredientes tienes? ¿Verduras, salsas?

Usuario: Cebolla, ajo, pimiento rojo, salsa de soja.
Chef: Ingredientes necesarios:

- 300 g de pollo
- 200 g de arroz
- 1 cebolla mediana
- 2 dientes de ajo
- 1 pimiento rojo
- 2 cucharadas de salsa de soja
- 1 cucharada de aceite de oliva
- Sal y pimienta al gusto

Pasos:

1. Lava y cocina el arroz en agua con sal durante 15 minutos hasta que esté al dente. Escurre y reserva.
2. Pica finamente la cebolla, el ajo y el pimiento rojo.
3. Calienta el aceite en una sartén grande a fuego medio. Añade cebolla y ajo, sofríe 3 minutos hasta que estén transparentes.
4. Corta el pollo en trozos pequeños y agrégalo a la sartén. Cocina 8-10 minutos hasta dorar, revolviendo ocasionalmente.
5. Añade el pimiento y cocina 5 minutos más.
6. Incorpora la salsa de soja, mezcla bien y cocina 2 minutos para integrar sabores.
7. Mezcla el arroz con el salteado, ajusta con sal y pimienta. Sirve caliente.

Tiempo total aproximado: 40 minutos.`

// Service implements the chat relay use case
type Service struct {
	model  outbound.ChatModel
	logger *zap.Logger
}

// NewService creates a new chat relay service
func NewService(model outbound.ChatModel, logger *zap.Logger) inbound.ChatService {
	return &Service{
		model:  model,
		logger: logger.Named("chat-service"),
	}
}

// Relay converts the transcript and streams the model response to sink.
// Any provider failure propagates as an upstream error; there is no
// retry and no partial-stream recovery.
func (s *Service) Relay(ctx context.Context, turns []inbound.ChatTurn, sink inbound.StreamSink) error {
	messages := ConvertTurns(turns)

	s.logger.Info("relaying chat to model provider",
		zap.Int("turns", len(turns)),
		zap.Int("messages", len(messages)),
	)

	err := s.model.StreamChat(ctx, chefSystemPromptV1, messages, sink.Delta)
	if err != nil {
		s.logger.Error("model stream failed", zap.Error(err))
		return errors.NewUpstreamError("model provider", err)
	}
	return nil
}

// ConvertTurns maps UI turns to provider messages. Only text parts are
// forwarded; unsupported part types are silently dropped, and turns
// left without content are omitted entirely.
func ConvertTurns(turns []inbound.ChatTurn) []outbound.ChatMessage {
	messages := make([]outbound.ChatMessage, 0, len(turns))
	for _, turn := range turns {
		role := normalizeRole(turn.Role)

		var sb strings.Builder
		for _, part := range turn.Parts {
			if part.Type != "text" || part.Text == "" {
				continue
			}
			if sb.Len() > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(part.Text)
		}

		if sb.Len() == 0 {
			continue
		}
		messages = append(messages, outbound.ChatMessage{Role: role, Content: sb.String()})
	}
	return messages
}

func normalizeRole(role string) string {
	if role == "assistant" {
		return "assistant"
	}
	return "user"
}
