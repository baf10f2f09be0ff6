// Package i18n holds the fixed Arabic message catalog. There is no locale
// switch: every user-visible string is resolved through Printer.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Locale is the only language the interface is rendered in.
var Locale = language.Arabic

// Message keys.
const (
	KeySetupError        = "setup.missing_credential"
	KeyInvalidFileType   = "upload.invalid_type"
	KeyFileReadError     = "upload.read_error"
	KeyNoImageSelected   = "generate.no_image"
	KeyInitializing      = "generate.initializing"
	KeyDownloading       = "generate.downloading"
	KeyGenerationUnknown = "generate.unknown_error"
	KeyEmptyResult       = "generate.empty_result"
	KeyDownloadFailed    = "generate.download_failed"
	KeyInProgress        = "generate.in_progress"
	KeyPollLimit         = "generate.poll_limit"
	KeyUnexpected        = "error.unexpected"
	KeyErrorBanner       = "error.banner"

	KeyPageTitle     = "page.title"
	KeyPageSubtitle  = "page.subtitle"
	KeyChooseImage   = "page.choose_image"
	KeyUploadImage   = "page.upload_image"
	KeyGenerate      = "page.generate"
	KeyReset         = "page.reset"
	KeyPreviewAlt    = "page.preview_alt"
	KeyVideoFallback = "page.video_fallback"
)

// loadingKeys are shown one per poll interval, clamped at the last.
var loadingKeys = []string{
	"generate.loading.0",
	"generate.loading.1",
	"generate.loading.2",
	"generate.loading.3",
}

var entries = map[string]string{
	KeySetupError:        "خطأ في الإعداد: مفتاح API غير موجود. يرجى التأكد من إضافته بشكل صحيح في إعدادات البيئة.",
	KeyInvalidFileType:   "الرجاء اختيار ملف صورة صالح.",
	KeyFileReadError:     "حدث خطأ أثناء قراءة الصورة.",
	KeyNoImageSelected:   "الرجاء رفع صورة أولاً.",
	KeyInitializing:      "جاري تهيئة عملية إنشاء الفيديو...",
	KeyDownloading:       "جاري تحميل الفيديو...",
	KeyGenerationUnknown: "حدث خطأ غير معروف أثناء إنشاء الفيديو.",
	KeyEmptyResult:       "فشل إنشاء الفيديو في إنتاج نتيجة.",
	KeyDownloadFailed:    "فشل تحميل الفيديو: %s",
	KeyInProgress:        "يتم إنشاء فيديو بالفعل، يرجى الانتظار.",
	KeyPollLimit:         "استغرق إنشاء الفيديو وقتاً أطول من المسموح. الرجاء المحاولة مرة أخرى.",
	KeyUnexpected:        "حدث خطأ غير متوقع. الرجاء المحاولة مرة أخرى.",
	KeyErrorBanner:       "خطأ: %s",

	KeyPageTitle:     "تحريك الصور بالذكاء الاصطناعي",
	KeyPageSubtitle:  "ارفع صورة وسنحوّلها إلى فيديو قصير.",
	KeyChooseImage:   "اختر صورة",
	KeyUploadImage:   "رفع الصورة",
	KeyGenerate:      "إنشاء الفيديو",
	KeyReset:         "البدء من جديد",
	KeyPreviewAlt:    "معاينة الصورة",
	KeyVideoFallback: "متصفحك لا يدعم تشغيل الفيديو.",

	"generate.loading.0": "الذكاء الاصطناعي يقوم بصياغة الفيديو الخاص بك...",
	"generate.loading.1": "هذه العملية قد تستغرق بضع دقائق، شكراً لصبرك.",
	"generate.loading.2": "يتم الآن صقل التفاصيل النهائية...",
	"generate.loading.3": "أوشكنا على الانتهاء، يتم وضع اللمسات الأخيرة...",
}

func init() {
	for key, msg := range entries {
		if err := message.SetString(Locale, key, msg); err != nil {
			panic(err)
		}
	}
	printer = message.NewPrinter(Locale)
}

var printer *message.Printer

// T resolves a catalog key, formatting args into it when the entry has verbs.
func T(key string, args ...any) string {
	return printer.Sprintf(key, args...)
}

// LoadingMessageCount is the number of rotating progress messages.
func LoadingMessageCount() int {
	return len(loadingKeys)
}

// LoadingMessage returns the rotating progress message at index, clamped to
// the valid range.
func LoadingMessage(index int) string {
	if index < 0 {
		index = 0
	}
	if index >= len(loadingKeys) {
		index = len(loadingKeys) - 1
	}
	return T(loadingKeys[index])
}

// Tag returns the BCP 47 tag used for Content-Language and the html lang attribute.
func Tag() string {
	return Locale.String()
}
