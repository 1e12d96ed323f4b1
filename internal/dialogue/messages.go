package dialogue

// Fixed bot lines. Replies that depend on the conversation come from the Responder.
const (
	msgWelcome          = "Hola, soy Equilibra. Estoy aquí para escucharte. ¿Qué te gustaría explorar hoy? Elige el síntoma que más se parece a lo que sientes."
	msgChooseSymptom    = "Para empezar, elige uno de los síntomas de la lista."
	msgAskOnset         = "Entiendo que estás sintiendo %s. ¿Desde cuándo lo sientes? Indica una fecha aproximada (AAAA-MM-DD)."
	msgOnsetFormat      = "No logré entender la fecha. Escríbela con el formato AAAA-MM-DD, por ejemplo 2024-03-15."
	msgOnsetFuture      = "La fecha no puede estar en el futuro. ¿Desde cuándo lo sientes?"
	msgOnsetTooOld      = "Indica una fecha dentro de los últimos cinco años, aunque sea aproximada."
	msgOnsetRecent      = "Gracias por compartirlo. Parece que esto empezó hace poco, y es un buen momento para atenderlo."
	msgOnsetMonths      = "Llevas varios meses con esto, y puede ser realmente agotador."
	msgOnsetYears       = "Has convivido con esto por más de un año. Es muy valioso que hoy lo estés hablando."
	msgDeepeningNudge   = "Cuéntame un poco más sobre cómo te has sentido."
	msgReferralQuestion = "Parece que te gustaría hablar con un profesional. ¿Quieres que agendemos una cita con nuestra psicóloga?"
	msgReferralDeclined = "Está bien, sigamos conversando."
	msgBookingPrompt    = "Con gusto. Indica la fecha (AAAA-MM-DD), la hora (HH:MM) y tu número de celular. Atendemos de lunes a viernes de 14:00 a 19:00 y los sábados de 08:00 a 14:00."
	msgBookingMissing   = "Para agendar necesito la fecha, la hora y tu número de celular."
	msgBookingCancelled = "Listo, no agendaremos la cita por ahora. Sigamos conversando: ¿cómo te sientes?"
	msgSlotTaken        = "Ese horario acaba de ser reservado. Por favor elige otra hora."
	msgBookingFailed    = "No pudimos agendar tu cita en este momento. Por favor intenta nuevamente en unos minutos."
	msgBooked           = "¡Listo! Tu cita quedó agendada para el %s a las %s. Te esperamos."
	msgBookedNoEmail    = " No pudimos avisar a la psicóloga por correo, pero tu cita está confirmada."
	msgAlreadyBooked    = "Tu cita ya está agendada. Si quieres empezar una nueva conversación, reinicia la sesión."
)
