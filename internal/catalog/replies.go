package catalog

var replyTable = map[string][]string{
	"Ansiedad": {
		"Respira profundamente y trata de enfocarte en el presente.",
		"¿Puedes identificar qué situaciones te generan más ansiedad?",
		"Hablar de tus miedos puede ayudarte a reducir su peso.",
		"¿Sientes que la ansiedad afecta tu cuerpo o solo tu mente?",
	},
	"Tristeza": {
		"Sentir tristeza es parte de la experiencia humana, está bien.",
		"¿Quieres contarme qué cosas te hacen sentir así?",
		"A veces, llorar puede ser una forma de liberar emociones.",
		"¿Has notado si hay momentos del día en que te sientes peor?",
	},
	"Estrés": {
		"El estrés puede acumularse, es importante encontrar momentos para relajarte.",
		"¿Qué situaciones sientes que te generan más estrés?",
		"Probar ejercicios de respiración puede ayudarte a calmarte.",
		"¿Sientes tensión física cuando estás estresado?",
	},
	"Soledad": {
		"Sentirse solo puede ser muy difícil, es bueno que lo expreses.",
		"¿Hay momentos o lugares donde te sientas más acompañado?",
		"Buscar actividades grupales puede ayudar a conectar con otros.",
		"¿Tienes algún amigo o familiar con quien puedas hablar?",
	},
	"Miedo": {
		"El miedo es una emoción natural, hablar de él puede ayudar.",
		"¿Puedes identificar qué te causa miedo específicamente?",
		"¿Cómo reaccionas cuando sientes ese miedo?",
		"Enfrentar poco a poco los miedos puede disminuir su poder.",
	},
	"Culpa": {
		"Sentir culpa puede ser pesado, es bueno que lo compartas.",
		"¿Sobre qué situaciones sientes esa culpa?",
		"Es importante diferenciar entre culpa justa e injusta.",
		"Hablar sobre la culpa puede ayudarte a aliviarla.",
	},
	"Inseguridad": {
		"La inseguridad puede afectar muchas áreas de tu vida.",
		"¿En qué situaciones te sientes más inseguro?",
		"Hablar de tus inseguridades es un buen paso para superarlas.",
		"¿Qué cualidades positivas reconoces en ti mismo?",
	},
	"Enojo": {
		"El enojo es una emoción válida, es bueno expresarlo.",
		"¿Qué situaciones suelen generar tu enojo?",
		"¿Cómo sueles manejar tu enojo cuando aparece?",
		"Hablar sobre lo que te molesta puede ayudarte a calmarte.",
	},
	"Agotamiento emocional": {
		"El agotamiento emocional puede afectar tu energía y ánimo.",
		"¿Qué cosas te están causando más cansancio emocional?",
		"Es importante que te des tiempo para descansar y recargar.",
		"Hablar de cómo te sientes puede aliviar parte del agotamiento.",
	},
	"Falta de motivación": {
		"La falta de motivación puede ser difícil, pero es temporal.",
		"¿Qué cosas te gustaría lograr si tuvieras más energía?",
		"Hablar de tus sentimientos puede ayudarte a encontrar motivación.",
		"¿Has identificado qué te quita las ganas de hacer cosas?",
	},
	"Problemas de sueño": {
		"Dormir bien es fundamental para tu bienestar general.",
		"¿Qué dificultades tienes para conciliar o mantener el sueño?",
		"Crear una rutina antes de dormir puede ayudarte a descansar mejor.",
		"Evitar pantallas antes de dormir puede mejorar la calidad del sueño.",
	},
	"Dolor corporal": {
		"El dolor puede afectar mucho tu calidad de vida, es importante escucharlo.",
		"¿Dónde sientes más el dolor y cómo describirías su intensidad?",
		"Hablar sobre el dolor puede ayudarte a entenderlo mejor.",
		"¿Has probado técnicas de relajación o estiramientos suaves?",
	},
	"Preocupación excesiva": {
		"Preocuparse es normal, pero en exceso puede afectar tu vida.",
		"¿Qué pensamientos recurrentes te generan más preocupación?",
		"Hablar de tus preocupaciones puede aliviar su peso.",
		"¿Has probado técnicas para distraer tu mente o relajarte?",
	},
	"Cambios de humor": {
		"Los cambios de humor pueden ser difíciles de manejar.",
		"¿Puedes identificar qué situaciones disparan esos cambios?",
		"Hablar de tus emociones puede ayudarte a entenderlas mejor.",
		"¿Has notado patrones en tus cambios de humor?",
	},
	"Apatía": {
		"Sentir apatía puede hacer que todo parezca sin sentido.",
		"¿Quieres contarme qué cosas te generan menos interés ahora?",
		"Hablar de lo que sientes puede ayudarte a reconectar contigo.",
		"¿Has notado si la apatía está relacionada con otras emociones?",
	},
	"Sensación de vacío": {
		"Sentir vacío puede ser muy desconcertante, gracias por compartir.",
		"¿Quieres contarme cuándo empezaste a sentir ese vacío?",
		"Hablar sobre ello puede ayudarte a entender mejor tus emociones.",
		"¿Hay momentos en que ese vacío se hace más presente?",
	},
	"Pensamientos negativos": {
		"Los pensamientos negativos pueden ser muy pesados.",
		"¿Puedes contarme qué tipo de pensamientos recurrentes tienes?",
		"Hablar sobre ellos puede ayudarte a liberarte un poco.",
		"Reconocer estos pensamientos es el primer paso para manejarlos.",
	},
	"Llanto frecuente": {
		"Llorar puede ser una forma sana de liberar emociones.",
		"¿Quieres contarme qué te hace llorar con más frecuencia?",
		"Hablar de lo que sientes puede ayudarte a entender mejor tu llanto.",
		"¿Sientes alivio después de llorar o te cuesta mucho controlarlo?",
	},
	"Dificultad para concentrarse": {
		"La concentración puede verse afectada por muchos factores.",
		"¿Quieres contarme cuándo notas más esta dificultad?",
		"Hablar de lo que te distrae puede ayudarte a mejorar tu foco.",
		"Reconocer este problema es importante para buscar soluciones.",
	},
	"Desesperanza": {
		"Sentir desesperanza es muy difícil, gracias por compartirlo.",
		"¿Quieres contarme qué te hace sentir así últimamente?",
		"Hablar sobre ello puede ayudarte a encontrar luz en la oscuridad.",
		"Reconocer esos sentimientos es el primer paso para salir adelante.",
	},
	"Tensión muscular": {
		"La tensión muscular puede ser síntoma de estrés o ansiedad.",
		"¿En qué partes de tu cuerpo sientes más tensión?",
		"Probar estiramientos suaves puede ayudarte a aliviar la tensión.",
		"¿Has intentado técnicas de relajación o respiración profunda?",
	},
	"Taquicardia": {
		"La taquicardia puede ser alarmante, es bueno que hables de ello.",
		"¿Cuándo has notado que se acelera tu corazón?",
		"¿Sientes que la taquicardia está relacionada con el estrés o ansiedad?",
		"Es importante que consultes con un médico para evaluar tu salud.",
	},
	"Dificultad para respirar": {
		"La dificultad para respirar puede ser muy angustiante.",
		"¿Cuándo sueles sentir que te falta el aire?",
		"Probar respiraciones lentas y profundas puede ayudar momentáneamente.",
		"Es fundamental que consultes con un profesional de salud.",
	},
	"Problemas de alimentación": {
		"Los problemas de alimentación pueden afectar tu salud integral.",
		"¿Quieres contarme qué dificultades estás experimentando?",
		"Hablar de tus hábitos puede ayudarte a entender mejor la situación.",
		"Reconocer el problema es el primer paso para buscar soluciones.",
	},
	"Pensamientos intrusivos": {
		"Los pensamientos intrusivos pueden ser muy molestos.",
		"¿Quieres contarme qué tipo de pensamientos te molestan?",
		"Hablar sobre ellos puede ayudarte a reducir su impacto.",
		"Reconocerlos es un paso para poder manejarlos mejor.",
	},
	"Problemas familiares": {
		"Las relaciones familiares pueden ser complejas, es válido sentirte así.",
		"¿Quieres contarme qué tipo de conflicto estás viviendo en casa?",
		"A veces, expresar lo que sientes puede aliviar tensiones con tus seres queridos.",
		"¿Sientes que te entienden en tu entorno familiar?",
	},
	"Problemas de pareja": {
		"Las relaciones pueden tener altibajos, es válido que busques apoyo.",
		"¿Te gustaría contarme qué está pasando con tu pareja?",
		"Expresar tus emociones puede ayudarte a entender mejor la situación.",
		"¿Sientes que tu relación te está afectando emocionalmente?",
	},
}
