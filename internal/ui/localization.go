package ui

import (
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// Localizer manages prompt and label translations
type Localizer struct {
	bundle          *i18n.Bundle
	currentLanguage string
	localizer       *i18n.Localizer
	fallback        *i18n.Localizer
}

// Text keys for localization
const (
	KeyYoutubeURL       = "youtube_url"
	KeyTwitchURL        = "twitch_url"
	KeyTelevisionURL    = "television_url"
	KeyPlaylistURL      = "playlist_url"
	KeyInvalidURL       = "invalid_url"
	KeyQueueFull        = "queue_full"
	KeyStreamTimeout    = "stream_timeout"
	KeyStreamFailed     = "stream_failed"
	KeyBusy             = "busy"
	KeyLive             = "live"
	KeyCategory         = "category"
	KeyMine             = "mine"
	KeyNotRated         = "not_rated"
	KeyPlaylistImported = "playlist_imported"
	KeyNothingFound     = "nothing_found"
	KeySeason           = "season"
	KeyShowTitle        = "show_title"
)

// NewLocalizer creates a localizer for lang, falling back to English
func NewLocalizer(lang string) *Localizer {
	bundle := i18n.NewBundle(language.English)
	for tag, msgs := range messages() {
		bundle.AddMessages(tag, msgs...)
	}
	l := &Localizer{bundle: bundle}
	l.currentLanguage = "en"
	l.fallback = i18n.NewLocalizer(bundle, "en")
	l.localizer = l.fallback
	l.SetLanguage(lang)
	return l
}

// SetLanguage sets the current language; unknown languages are ignored
func (l *Localizer) SetLanguage(lang string) {
	if lang == "" || lang == "system" {
		// Use system locale - simplified to English for now
		lang = "en"
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return
	}
	for _, t := range l.bundle.LanguageTags() {
		if t == tag {
			l.currentLanguage = lang
			l.localizer = i18n.NewLocalizer(l.bundle, lang)
			return
		}
	}
}

// Language returns the current language code
func (l *Localizer) Language() string {
	return l.currentLanguage
}

// Text returns the localized text for key
func (l *Localizer) Text(key string) string {
	return l.Format(key, nil)
}

// Format returns the localized text for key with template data applied.
// Missing translations fall back to English, then to the key itself.
func (l *Localizer) Format(key string, data map[string]any) string {
	cfg := &i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	}
	if s, err := l.localizer.Localize(cfg); err == nil && s != "" {
		return s
	}

	// Fallback to English
	if s, err := l.fallback.Localize(cfg); err == nil && s != "" {
		return s
	}

	// Final fallback - return key itself
	return key
}

// AvailableLanguages returns language codes with their display names
func AvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"ru": "Русский",
		"pt": "Português",
	}
}

func msg(id, other string) *i18n.Message {
	return &i18n.Message{ID: id, Other: other}
}

// messages returns all translations
func messages() map[language.Tag][]*i18n.Message {
	return map[language.Tag][]*i18n.Message{
		language.English: {
			msg(KeyYoutubeURL, "Youtube video url:"),
			msg(KeyTwitchURL, "Twitch video url:"),
			msg(KeyTelevisionURL, "Television video url:"),
			msg(KeyPlaylistURL, "Youtube playlist url:"),
			msg(KeyInvalidURL, "Invalid url"),
			msg(KeyQueueFull, "Too many users streaming. Current queue length: {{.Queue}}"),
			msg(KeyStreamTimeout, "The stream took too long to start"),
			msg(KeyStreamFailed, "The stream could not be started"),
			msg(KeyBusy, "Another video is still loading, please try again"),
			msg(KeyLive, "LIVE"),
			msg(KeyCategory, "Category: {{.Name}}"),
			msg(KeyMine, "Mine"),
			msg(KeyNotRated, "Not Rated"),
			msg(KeyPlaylistImported, "Imported {{.Count}} videos"),
			msg(KeyNothingFound, "Nothing found"),
			msg(KeySeason, "Season {{.Number}}"),
			msg(KeyShowTitle, "Show: {{.Name}}"),
		},
		language.Russian: {
			msg(KeyYoutubeURL, "Ссылка на видео Youtube:"),
			msg(KeyTwitchURL, "Ссылка на видео Twitch:"),
			msg(KeyTelevisionURL, "Ссылка на телеканал:"),
			msg(KeyPlaylistURL, "Ссылка на плейлист Youtube:"),
			msg(KeyInvalidURL, "Неверный URL"),
			msg(KeyQueueFull, "Слишком много трансляций. Длина очереди: {{.Queue}}"),
			msg(KeyStreamTimeout, "Трансляция не запустилась вовремя"),
			msg(KeyStreamFailed, "Не удалось запустить трансляцию"),
			msg(KeyBusy, "Другое видео ещё загружается, попробуйте снова"),
			msg(KeyLive, "ЭФИР"),
			msg(KeyCategory, "Категория: {{.Name}}"),
			msg(KeyMine, "Мои"),
			msg(KeyNotRated, "Без рейтинга"),
			msg(KeyPlaylistImported, "Импортировано видео: {{.Count}}"),
			msg(KeyNothingFound, "Ничего не найдено"),
			msg(KeySeason, "Сезон {{.Number}}"),
			msg(KeyShowTitle, "Сериал: {{.Name}}"),
		},
		language.Portuguese: {
			msg(KeyYoutubeURL, "URL do vídeo do Youtube:"),
			msg(KeyTwitchURL, "URL do vídeo da Twitch:"),
			msg(KeyTelevisionURL, "URL do canal de televisão:"),
			msg(KeyPlaylistURL, "URL da playlist do Youtube:"),
			msg(KeyInvalidURL, "URL inválida"),
			msg(KeyQueueFull, "Muitos usuários transmitindo. Fila atual: {{.Queue}}"),
			msg(KeyStreamTimeout, "A transmissão demorou demais para começar"),
			msg(KeyStreamFailed, "Não foi possível iniciar a transmissão"),
			msg(KeyBusy, "Outro vídeo ainda está carregando, tente novamente"),
			msg(KeyLive, "AO VIVO"),
			msg(KeyCategory, "Categoria: {{.Name}}"),
			msg(KeyMine, "Meus"),
			msg(KeyNotRated, "Sem classificação"),
			msg(KeyPlaylistImported, "{{.Count}} vídeos importados"),
			msg(KeyNothingFound, "Nada encontrado"),
			msg(KeySeason, "Temporada {{.Number}}"),
			msg(KeyShowTitle, "Série: {{.Name}}"),
		},
	}
}
