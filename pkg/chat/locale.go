package chat

// Locale bundles the user-facing strings and routing keyword lists. The
// app ships Turkish; the struct keeps the service testable with other
// sets.
type Locale struct {
	SystemInstruction string
	TitlePrompt       string
	Welcome           string

	CallStarted string
	CallEnded   string

	SearchKeywords []string
	ImageKeywords  []string
	VideoKeywords  []string

	StartCallCommand string
	EndCallCommand   string

	SummarizeURLPrompt     string
	VideoPromptInstruction string
	VideoReplyText         string

	ImageStyles      []string
	ImageAtmospheres []string
	ImageDetails     []string
}

// Turkish is the default locale.
func Turkish() Locale {
	return Locale{
		SystemInstruction: "Sen Td AI adında yardımsever bir yapay zeka asistanısın. " +
			"Türkçe konuşuyorsun ve kullanıcılara samimi, net ve doğru yanıtlar veriyorsun.",
		TitlePrompt: "Aşağıdaki mesaj için en fazla beş kelimelik kısa bir sohbet başlığı üret. " +
			"Sadece başlığı yaz, açıklama ekleme:\n\n",
		Welcome: "Merhaba! Ben Td AI. Sana nasıl yardımcı olabilirim?",

		CallStarted: "Görüntülü görüşme başladı! ",
		CallEnded:   "Görüntülü görüşme bitti.",

		SearchKeywords: []string{"ara", "araştır", "güncel", "haber", "bugün", "son dakika", "kaç", "ne zaman", "fiyat"},
		ImageKeywords:  []string{"çiz", "resim yap", "resmini", "görsel oluştur", "görselini", "fotoğrafını oluştur"},
		VideoKeywords:  []string{"video oluştur", "video yap", "videosunu"},

		StartCallCommand: "görüşme başlat",
		EndCallCommand:   "görüşmeyi bitir",

		SummarizeURLPrompt: "Bu bağlantıdaki içeriği Türkçe olarak özetle: ",
		VideoPromptInstruction: "Şu istek için bir video üretim modeline verilecek ayrıntılı, " +
			"tek paragraflık bir İngilizce sahne metni yaz: ",
		VideoReplyText: "Video oluşturma isteğin için ayrıntılı bir sahne metni hazırladım. " +
			"Aşağıdaki metni bir video üretim aracında kullanabilirsin:",

		ImageStyles:      []string{"fotogerçekçi", "dijital illüstrasyon", "yağlı boya", "minimalist vektör", "sinematik konsept sanatı"},
		ImageAtmospheres: []string{"sıcak gün batımı ışığı", "yumuşak stüdyo aydınlatması", "sisli sabah atmosferi", "canlı neon tonları"},
		ImageDetails:     []string{"yüksek detay", "zengin doku", "dengeli kompozisyon", "keskin odak"},
	}
}
