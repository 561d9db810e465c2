package analysis

// analysisPrompt takes the video title and the transcript, in that order.
const analysisPrompt = `Eres un analista financiero experto. Analiza de forma impersonal la transcripción del vídeo "%s".

TRANSCRIPCIÓN:
%s

Genera el análisis con formato de tarjetas informativas:

📊 RESUMEN

[1 párrafo con los puntos más importantes, de 300-400 caracteres]

📈 NIVELES TÉCNICOS

S&P 500:
  🟢 Soporte ........ [X]
  🔴 Resistencia .... [X]
  📍 Actual .......... [X]

[Otros valores con formato similar]

📅 EVENTOS CLAVE

📌 [Fecha]: [Evento]

📌 [Fecha]: [Evento]
(Máximo 10 eventos)

🎯 SENTIMIENTO

Estado: [Muy optimista/Optimista/Neutral/Cauteloso/Muy Cauteloso]

Factores positivos:
  ✓ [Factor 1]
  ✓ [Factor 2]

Factores negativos:
  ✗ [Factor 1]
  ✗ [Factor 2]

⚡ Recomendación
[Dar consejo, no más de 300 caracteres]

Reglas:
- Ultra conciso
- Utilizar lenguaje impersonal sin referirse al autor del vídeo, utilizar pasiva refleja
- Niveles clave con puntos para su alineación
- Dentro de los niveles técnicos, si sólo se menciona el nivel actual de un valor pero no los soportes o resistencias entonces no incluir ese valor.
- Máximo 10 eventos
- Los eventos clave son aquellos programados en una fecha específica o rango de fechas, los eventos probabilísticos o históricos no se consideran. Los anuncios de cuándo cierran o reabren las bolsas tampoco son eventos.
- Si no hay info, escribe "N/A"
- Máximo 5 factores positivos y 5 negativos
`
