package fallback

// Rule maps a keyword set onto candidate trigger phrases. The first keyword
// found anywhere in the input selects the rule; the first target present in
// the reply table is used.
type Rule struct {
	Name     string
	Keywords []string
	Targets  []string
}

// DefaultRules is evaluated top to bottom; order decides ambiguous input.
var DefaultRules = []Rule{
	{Name: "greeting", Keywords: []string{"hi", "hello", "hey"}, Targets: []string{"hi", "hello"}},
	{Name: "services", Keywords: []string{"service", "offer", "what do you do", "help with"}, Targets: []string{"what services", "services do you offer"}},
	{Name: "seo", Keywords: []string{"seo", "search engine", "google ranking", "rank"}, Targets: []string{"seo", "search engine"}},
	{Name: "social", Keywords: []string{"social media", "instagram", "facebook", "tiktok"}, Targets: []string{"social media", "instagram"}},
	{Name: "web", Keywords: []string{"website", "web dev", "site", "web design"}, Targets: []string{"website", "web development"}},
	{Name: "video", Keywords: []string{"video", "editing", "youtube", "reels"}, Targets: []string{"video", "video editing"}},
	{Name: "pricing", Keywords: []string{"price", "cost", "how much", "expensive", "pricing"}, Targets: []string{"how much", "cost", "price"}},
	{Name: "restaurant", Keywords: []string{"restaurant", "cafe", "food"}, Targets: []string{"restaurant"}},
	{Name: "ecommerce", Keywords: []string{"ecommerce", "online store", "shopify"}, Targets: []string{"ecommerce"}},
	{Name: "small_business", Keywords: []string{"small business", "startup", "local business"}, Targets: []string{"small business"}},
	{Name: "objection", Keywords: []string{"think", "maybe", "not sure"}, Targets: []string{"think about it", "maybe later", "not sure"}},
	{Name: "positive", Keywords: []string{"good", "great", "sounds good", "interested"}, Targets: []string{"sounds good", "interested"}},
	{Name: "affirmative", Keywords: []string{"yes", "yeah", "sure", "ok"}, Targets: []string{"yes"}},
	{Name: "thanks", Keywords: []string{"thanks", "thank you"}, Targets: []string{"thanks", "thank you"}},
	{Name: "booking", Keywords: []string{"book", "schedule", "call", "meeting", "appointment"}, Targets: []string{"book call", "schedule"}},
	{Name: "tomorrow", Keywords: []string{"tomorrow"}, Targets: []string{"tomorrow"}},
	{Name: "friday", Keywords: []string{"friday"}, Targets: []string{"friday"}},
	{Name: "afternoon", Keywords: []string{"2 pm", "2pm", "afternoon"}, Targets: []string{"2 pm"}},
	{Name: "morning", Keywords: []string{"10 am", "10am", "morning"}, Targets: []string{"10 am"}},
	{Name: "availability", Keywords: []string{"available", "availability", "when", "time"}, Targets: []string{"available", "when can we meet"}},
	{Name: "this_week", Keywords: []string{"this week"}, Targets: []string{"this week"}},
	{Name: "next_week", Keywords: []string{"next week"}, Targets: []string{"next week"}},
	{Name: "email", Keywords: []string{"email", "e-mail"}, Targets: []string{"email"}},
	{Name: "phone", Keywords: []string{"phone", "number", "contact"}, Targets: []string{"phone number"}},
	{Name: "company_site", Keywords: []string{"digitallabservices", "your website", "site link", "url"}, Targets: []string{"website"}},
	{Name: "location", Keywords: []string{"where are you", "your location", "office"}, Targets: []string{"where are you located", "location"}},
	{Name: "remote", Keywords: []string{"remote", "work from home", "virtual"}, Targets: []string{"remote"}},
	{Name: "unavailable", Keywords: []string{"not available", "can't make"}, Targets: []string{"not available", "can't make it"}},
	{Name: "busy", Keywords: []string{"busy", "no time"}, Targets: []string{"busy"}},
	{Name: "reschedule", Keywords: []string{"different time", "another time", "reschedule"}, Targets: []string{"different time"}},
	{Name: "calendly", Keywords: []string{"calendly", "calendar link", "scheduling link"}, Targets: []string{"calendly"}},
	{Name: "bye", Keywords: []string{"bye", "goodbye"}, Targets: []string{"bye", "goodbye"}},
	{Name: "thats_all", Keywords: []string{"that's all", "that's it", "all for now"}, Targets: []string{"that's all"}},
	{Name: "thats_enough", Keywords: []string{"that's enough", "enough for now"}, Targets: []string{"that's enough"}},
	{Name: "end_call", Keywords: []string{"end call", "hang up", "finish"}, Targets: []string{"end call"}},
	{Name: "talk_later", Keywords: []string{"talk later", "speak later", "chat later"}, Targets: []string{"talk later"}},
}
