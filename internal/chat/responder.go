package chat

import "strings"

// Topic 关键词与对应的急救建议
type Topic struct {
	Keyword  string
	Response string
}

// DefaultResponse 未匹配任何关键词时的回复
const DefaultResponse = "I can provide basic first aid information for common emergencies. Try asking about 'fall', 'low blood pressure', 'high blood pressure', or 'oxygen levels'."

// Greeting 新会话的第一条机器人消息
const Greeting = "Hello! I can help with first aid questions. What would you like to know?"

// FirstAidTopics 按优先级升序排列：后面的条目更具体，同时命中时后者胜出
// （例如 "low heart rate" 优先于 "heart rate"）
var FirstAidTopics = []Topic{
	{"fall", "If someone has fallen: 1. Check for responsiveness and breathing. 2. Don't move them if you suspect head/neck/spine injury. 3. If they're unconscious, call emergency services immediately. 4. If they're conscious, help them to a comfortable position and check for injuries. 5. Apply ice or a cold pack if there are any bruises or swelling, but avoid placing it directly on the skin."},
	{"low blood pressure", "For low blood pressure: 1. Sit or lie down immediately. 2. Drink water to increase fluids. 3. Consume some salt if not contraindicated by other conditions. 4. Move legs to improve circulation. 5. Seek medical help if symptoms persist or worsen. 6. Avoid sudden changes in posture. 7. Eat small, frequent meals to prevent drops in blood pressure."},
	{"high blood pressure", "For high blood pressure emergency: 1. Sit down and rest. 2. Take deep breaths. 3. If you take BP medication, ensure you've taken it. 4. Call emergency services if you have severe headache, vision problems, chest pain, or difficulty breathing. 5. Avoid caffeine, alcohol, and excessive salt."},
	{"oxygen", "For low oxygen levels: 1. Sit upright to maximize lung capacity. 2. Take slow, deep breaths. 3. Move to fresh air if possible. 4. Seek emergency help if experiencing chest pain, severe shortness of breath, or bluish lips/face. 5. If available, use supplemental oxygen as prescribed by a doctor."},
	{"heart rate", "For abnormal heart rate: 1. Sit down and rest. 2. Take slow, deep breaths. 3. Avoid caffeine and stimulants. 4. If heart rate is very high or accompanied by chest pain, dizziness, or shortness of breath, seek emergency help. 5. Check for any known heart conditions or medications that may be affecting heart rate."},
	{"low heart rate", "For low heart rate: 1. Sit down and relax. 2. Take deep breaths. 3. Avoid stress or sudden movements. 4. If symptoms persist, seek medical attention immediately. 5. Check if you have a heart condition that may require attention. 6. Drink water to maintain hydration levels."},
	{"dizziness", "For dizziness: 1. Sit or lie down immediately to prevent falling. 2. Drink water to ensure proper hydration. 3. Avoid sudden movements and try to rest. 4. If dizziness persists or is accompanied by fainting, seek medical help."},
	{"shortness of breath", "For shortness of breath: 1. Sit down and try to stay calm. 2. Take slow, deep breaths to reduce panic. 3. Avoid physical activity. 4. If symptoms persist or worsen, call emergency services."},
	{"chest pain", "For chest pain: 1. Sit down and rest. 2. If you have a history of heart problems, take prescribed medication if available. 3. Chew an aspirin (if not contraindicated). 4. Seek emergency medical help immediately if chest pain persists, especially if accompanied by shortness of breath, dizziness, or nausea."},
}

// Responder 关键词匹配的急救助手
type Responder struct {
	topics   []Topic
	fallback string
}

func NewResponder(topics []Topic, fallback string) *Responder {
	return &Responder{topics: topics, fallback: fallback}
}

// DefaultResponder 内置急救话题
func DefaultResponder() *Responder {
	return NewResponder(FirstAidTopics, DefaultResponse)
}

// Respond 返回优先级最高的命中话题；没有命中时返回默认回复
func (r *Responder) Respond(input string) string {
	text := strings.ToLower(input)
	for i := len(r.topics) - 1; i >= 0; i-- {
		if strings.Contains(text, r.topics[i].Keyword) {
			return r.topics[i].Response
		}
	}
	return r.fallback
}

// Match 返回命中的关键词，没有命中返回空串
func (r *Responder) Match(input string) string {
	text := strings.ToLower(input)
	for i := len(r.topics) - 1; i >= 0; i-- {
		if strings.Contains(text, r.topics[i].Keyword) {
			return r.topics[i].Keyword
		}
	}
	return ""
}
