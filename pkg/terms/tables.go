package terms

// DefaultTables returns the built-in brokerage support-desk tables.
// Deployments with a different vocabulary load an override via LoadTables.
func DefaultTables() *Tables {
	return &Tables{
		Keywords: []string{
			"بورس", "سهام", "سهم", "صندوق", "کارمزد", "واریز", "برداشت",
			"سفارش", "تسویه", "سجام", "رمز", "ریست", "خطا", "تیکت",
			"حساب", "پرتفوی", "عرضه", "ابطال", "صدور", "کد",
			"nav", "api", "etf", "otp",
		},
		StopWords: []string{
			// Persian function words and interrogatives
			"و", "در", "به", "از", "که", "را", "با", "برای", "این", "آن",
			"است", "هست", "نیست", "بود", "شد", "شده", "می", "شود", "کنم",
			"کنید", "کرد", "کردن", "دارد", "باید", "اگر", "تا", "هم",
			"یک", "یا", "چه", "چرا", "کجا", "کی", "آیا", "من", "شما", "ما",
			"چطور", "چگونه", "چیست", "کدام", "چند", "هستم", "هستید",
			// English function words
			"the", "a", "an", "is", "are", "was", "of", "to", "in", "on",
			"for", "and", "or", "it", "my", "do", "does", "can", "i",
		},
		Synonyms: map[string][]string{
			"رمز عبور":   {"پسورد", "گذرواژه", "کلمه عبور"},
			"ریست":       {"بازنشانی", "بازیابی", "فراموشی"},
			"سهام":       {"سهم", "اوراق"},
			"کارمزد":     {"هزینه معامله", "فی"},
			"واریز":      {"شارژ حساب", "افزایش موجودی"},
			"برداشت":     {"خروج وجه", "انتقال وجه"},
			"صندوق":      {"فاند", "etf"},
			"nav":        {"ارزش خالص دارایی", "قیمت صدور"},
			"سفارش":      {"اردر", "درخواست خرید"},
			"تسویه":      {"t+1", "پایاپای"},
			"احراز هویت": {"سجام", "ثبت نام"},
			"خطا":        {"ارور", "error"},
			"عرضه اولیه": {"آی پی او", "ipo"},
		},
	}
}
