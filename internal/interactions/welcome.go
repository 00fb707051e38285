package interactions

import (
	"fmt"

	discord "github.com/WelcomerTeam/Discord/discord"

	"github.com/valinor-ai/supportdesk/internal/discordapi"
)

const welcomeEmbedColor = 0x2b2d31

const welcomeTemplate = "**Buenas <@%s>,**\n\n" +
	"**Este es tu canal**, por aqui podras preguntar todas las **dudas y problemas** " +
	"que tengas en la organizacion o con otros compañeros, tambien " +
	"**este será el medio por el que se te avisará de penalizaciones u otras faltas** " +
	"que hayas cometido.\n\n" +
	"**Este es un medio seguro al que solo a ti y a los <@&%s> " +
	"se les permite leer el texto que se mande**, los R8 y R9 solo pueden acceder " +
	"para adjuntar cosas concretas (pero no podran ver los mensajes que hemos " +
	"enviado tanto tu como nosotros) por lo que puedes estar tranquilo, " +
	"es un ~~**sitio confidencial**~~."

func welcomeMessage(memberID, mentionRoleID discord.Snowflake) discordapi.MessageParams {
	return discordapi.MessageParams{
		Embeds: []discordapi.Embed{{
			Description: fmt.Sprintf(welcomeTemplate, memberID, mentionRoleID),
			Color:       welcomeEmbedColor,
		}},
	}
}
