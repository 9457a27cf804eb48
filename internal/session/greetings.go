package session

import (
	"fmt"
	"math/rand"
	"time"
)

// timeGreeting buckets the hour of day into a salutation.
func timeGreeting(now time.Time) string {
	hour := now.Hour()
	switch {
	case hour >= 5 && hour < 12:
		return "Good morning"
	case hour >= 12 && hour < 17:
		return "Good afternoon"
	case hour >= 17 && hour < 22:
		return "Good evening"
	default:
		return "Happy late night"
	}
}

// genericGreetings is used before any call metadata has arrived.
func genericGreetings(salutation, name string) []string {
	return []string{
		fmt.Sprintf("%s! I'm %s. How can I assist you today?", salutation, name),
		fmt.Sprintf("%s! I'm %s. What do you need help with?", salutation, name),
		fmt.Sprintf("%s! I'm %s. Ready to get started?", salutation, name),
		fmt.Sprintf("%s! I'm %s. How's your day going?", salutation, name),
		fmt.Sprintf("Hey there! I'm %s. How can I support you today?", name),
		fmt.Sprintf("Hello! I'm %s. What's on your mind?", name),
		fmt.Sprintf("%s! I'm %s. Let's make today productive!", salutation, name),
		fmt.Sprintf("%s! I'm %s. Let me know how I can help!", salutation, name),
		fmt.Sprintf("Hi! I'm %s. Need help with anything?", name),
		fmt.Sprintf("Hey! I'm %s. What's the plan for today?", name),
	}
}

// onboardingGreetings welcomes a first-time user and introduces what the
// assistant can do.
func onboardingGreetings(salutation, userName, botName string) []string {
	return []string{
		fmt.Sprintf("%s, %s! Welcome aboard! I'm %s, your personal assistant. I help manage leads, schedule appointments, track key metrics, and keep your workflow seamless. Let's get started!", salutation, userName, botName),
		fmt.Sprintf("Hey %s, great to have you here! I'm %s, your AI-powered assistant. I'll help you stay organized by managing leads, scheduling, and tracking key performance metrics. Let's make things efficient!", userName, botName),
		fmt.Sprintf("%s, %s! I'm %s, your virtual assistant. I handle lead management, scheduling, and performance tracking so you can focus on closing more deals.", salutation, userName, botName),
		fmt.Sprintf("Welcome, %s! I'm %s, designed to help you streamline your workflow by managing leads, scheduling appointments, and keeping track of your business performance.", userName, botName),
		fmt.Sprintf("Nice to meet you, %s! I'm %s, your smart assistant. I help you stay on top of leads, appointments, and key insights, making your workflow smoother and more efficient.", userName, botName),
		fmt.Sprintf("%s, %s! Congrats on getting started! I'm %s, your AI assistant, here to help with lead tracking, scheduling, and performance insights. Let's get things rolling!", salutation, userName, botName),
		fmt.Sprintf("Hey %s! I'm %s, your personal assistant! I'll handle scheduling, lead tracking, and key insights so you can focus on growing your business. Let's get started!", userName, botName),
		fmt.Sprintf("%s, %s! I'm %s, your AI-powered real estate assistant. I'll keep your workflow organized, track your performance, and help you stay productive. Let's go!", salutation, userName, botName),
	}
}

// contextualGreetings welcomes a returning user by name.
func contextualGreetings(salutation, userName string) []string {
	return []string{
		fmt.Sprintf("%s, %s! Hope you're having a great day!", salutation, userName),
		fmt.Sprintf("Hey %s, how's your day going?", userName),
		fmt.Sprintf("Hi %s, How's your day going?", userName),
		fmt.Sprintf("Good to see you, %s! What's on your plate today?", userName),
		fmt.Sprintf("%s, %s. How can I assist you today?", salutation, userName),
		fmt.Sprintf("Hello, %s. Let me know how I can help!", userName),
		fmt.Sprintf("%s, %s. Ready to tackle the day?", salutation, userName),
		fmt.Sprintf("Welcome back, %s. What's your priority today?", userName),
		fmt.Sprintf("Hey %s, let's make today productive!", userName),
		fmt.Sprintf("%s, %s! Ready to close some deals?", salutation, userName),
		fmt.Sprintf("Hope you're feeling great, %s! Let's get started.", userName),
		fmt.Sprintf("%s, %s! What's the next big win for today?", salutation, userName),
		fmt.Sprintf("Hi %s, how's business looking today?", userName),
		fmt.Sprintf("Hey %s, anything exciting happening in real estate?", userName),
		fmt.Sprintf("%s, %s! What's on your mind?", salutation, userName),
		fmt.Sprintf("Hello, %s. Need help with anything specific?", userName),
	}
}

// openingLines is used when metadata is present but carries no user name.
func openingLines(name string) []string {
	return []string{
		fmt.Sprintf("Hi, I'm %s, your virtual real estate assistant. How can I help you today?", name),
		fmt.Sprintf("Hello, I'm %s! Ready to assist with all your real estate needs. What can I do for you?", name),
		fmt.Sprintf("Hey there, I'm %s! Looking for your dream home or need help with your listings?", name),
		fmt.Sprintf("Hi, I'm %s. Let's find the perfect property or tackle your real estate tasks together!", name),
		fmt.Sprintf("Hello, I'm %s, your AI assistant. Let's make your real estate journey smoother. What's on your mind?", name),
		fmt.Sprintf("Hi, I'm %s! Here to help with buying, selling, or managing your real estate needs.", name),
		fmt.Sprintf("Hello, I'm %s. Whether it's scheduling a showing or finding leads, I've got you covered!", name),
		fmt.Sprintf("Hi there, I'm %s! Ready to help with everything from listings to leads. How can I assist?", name),
		fmt.Sprintf("Hey, I'm %s, your personal real estate assistant. Let's get to work!", name),
		fmt.Sprintf("Hi, I'm %s! Need help finding a home or managing your clients? Just say the word!", name),
	}
}

// waitVariants is the filler spoken before tool execution so the peer hears
// feedback during backend latency.
var waitVariants = []string{
	"Sure thing, just a sec.",
	"Hold on, let me check.",
	"Got it, give me a moment.",
	"Of course, let me sort that out.",
	"Alright, let me handle that.",
	"No problem, just a moment.",
	"Okay, let me get that for you.",
	"One second, I'm on it.",
	"Alright, let me take care of that.",
	"Sure, just a bit of patience.",
	"Right away, hold tight.",
	"Absolutely, hang on for a sec.",
	"Let me get to that real quick.",
	"Certainly, one moment, please.",
	"I'll take care of it in just a second.",
}

func pickVariant(variants []string) string {
	return variants[rand.Intn(len(variants))]
}
